package cli

import (
	"gorm.io/gorm"

	"budgetry/internal/config"
	"budgetry/internal/database"
	"budgetry/internal/logger"
	"budgetry/internal/recurring"
	"budgetry/internal/server"
	"budgetry/internal/store"
)

// stack is the application wired for one command invocation.
type stack struct {
	cfg    *config.Config
	app    *server.App
	sample bool
	close  func()
}

// openStack loads configuration and wires the engine over the sample
// provider or the configured database.
func openStack(opts *RootOptions) (*stack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	logger.Init(cfg.Env, level)

	clock := opts.Clock
	if clock == nil {
		clock = recurring.SystemClock{Location: cfg.Timezone}
	}

	s := &stack{cfg: cfg, close: func() {}}
	var (
		st recurring.Store
		db *gorm.DB
	)
	if opts.Sample || cfg.DataMode == config.DataModeSample {
		s.sample = true
		st = store.NewSampleStore(clock.Today())
	} else {
		manager, err := database.NewManager(cfg)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		if err := manager.RunMigrations(); err != nil {
			_ = manager.Close()
			return nil, WrapExitError(ExitCommandError, "failed to run migrations", err)
		}
		s.close = func() { _ = manager.Close() }
		db = manager.DB()
		st = store.NewGormStore(db)
	}

	s.app = server.NewApp(cfg, st, server.Options{AuditDB: db, Clock: clock})
	return s, nil
}

// owner returns ownerID, falling back to the demo owner on sample data.
func (s *stack) owner(ownerID string) (string, error) {
	if ownerID != "" {
		return ownerID, nil
	}
	if s.sample {
		return store.SampleOwnerID, nil
	}
	return "", NewExitError(ExitCommandError, "--owner is required")
}
