package services

import (
	"testing"

	"gorm.io/gorm"

	"budgetry/internal/calendar"
	"budgetry/internal/logger"
	"budgetry/internal/recurring"
	"budgetry/internal/store"
	"budgetry/internal/testutil"
)

func init() {
	logger.Init("test", "error")
}

// testToday is the fixed clock date used by service tests.
var testToday = calendar.New(2024, 3, 15)

type testServices struct {
	db          *gorm.DB
	engine      *recurring.Engine
	periods     PeriodServicer
	obligations ObligationServicer
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	engine := recurring.NewEngine(store.NewGormStore(db), recurring.FixedClock(testToday), recurring.NewMatcher(true), nil)
	periods := NewPeriodService(engine)
	return &testServices{
		db:          db,
		engine:      engine,
		periods:     periods,
		obligations: NewObligationService(engine, periods, 24),
	}
}
