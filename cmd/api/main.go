package main

import (
	"fmt"

	"budgetry/internal/calendar"
	"budgetry/internal/config"
	"budgetry/internal/database"
	"budgetry/internal/logger"
	"budgetry/internal/middleware"
	"budgetry/internal/recurring"
	"budgetry/internal/server"
	"budgetry/internal/store"
)

// @title           Budgetry API
// @version         1.0
// @description     Budgetry keeps monthly budget periods in sync with recurring bills and subscriptions.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.Env, appConfig.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	var (
		st   recurring.Store
		opts server.Options
	)
	switch appConfig.DataMode {
	case config.DataModeSample:
		st = store.NewSampleStore(calendar.Today(appConfig.Timezone))

		token, err := middleware.GenerateAccessToken(store.SampleOwnerID, appConfig.JWTExpirationDur)
		if err != nil {
			return fmt.Errorf("failed to sign sample token: %w", err)
		}
		log.Infow("serving sample data; changes are lost on restart",
			"owner_id", store.SampleOwnerID, "access_token", token)

	default:
		dbManager, err := database.NewManager(appConfig)
		if err != nil {
			return fmt.Errorf("failed to create database manager: %w", err)
		}
		defer func() {
			if err := dbManager.Close(); err != nil {
				log.Warnw("failed to close database", "error", err)
			}
		}()

		if err := dbManager.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}

		st = store.NewGormStore(dbManager.DB())
		opts.AuditDB = dbManager.DB()
	}

	app := server.NewApp(appConfig, st, opts)

	log.Infof("Starting Budgetry server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return app.Router.Run(":" + appConfig.Port)
}
