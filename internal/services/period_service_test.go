package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
	apperrors "budgetry/internal/errors"
	"budgetry/internal/models"
	"budgetry/internal/recurring"
	"budgetry/internal/store"
	"budgetry/internal/testutil"
)

func TestOpenPeriod(t *testing.T) {
	t.Run("creates_period_and_syncs", func(t *testing.T) {
		s := setupServices(t)
		owner := testutil.NewOwnerID()
		testutil.CreateTestObligation(t, s.db, owner, calendar.New(2024, 3, 1))

		view, err := s.periods.OpenPeriod(context.Background(), owner, 2024, 3)
		testutil.AssertNoError(t, err)

		if view.Period.ID == "" {
			t.Fatal("expected period to be persisted")
		}
		if len(view.Categories) != 1 || view.Categories[0].Name != models.BillsCategoryName {
			t.Fatalf("expected a single Bills category, got %+v", view.Categories)
		}
		testutil.AssertDecimal(t, view.Categories[0].BudgetCap, "100")
		if len(view.Entries) != 1 {
			t.Fatalf("expected 1 recorded entry, got %d", len(view.Entries))
		}
		if view.Totals.Bills.String() != "100" || !view.Totals.Subscriptions.IsZero() {
			t.Errorf("unexpected totals %+v", view.Totals)
		}
		if len(view.Obligations) != 1 || view.Obligations[0].Status != recurring.StatusPaid {
			t.Errorf("expected the obligation to be paid, got %+v", view.Obligations)
		}
		if len(view.Issues) != 0 {
			t.Errorf("expected no issues, got %v", view.Issues)
		}
	})

	t.Run("reopen_is_idempotent", func(t *testing.T) {
		s := setupServices(t)
		owner := testutil.NewOwnerID()
		testutil.CreateTestObligation(t, s.db, owner, calendar.New(2024, 3, 1))

		first, err := s.periods.OpenPeriod(context.Background(), owner, 2024, 3)
		testutil.AssertNoError(t, err)
		second, err := s.periods.OpenPeriod(context.Background(), owner, 2024, 3)
		testutil.AssertNoError(t, err)

		if first.Period.ID != second.Period.ID {
			t.Error("expected the same period on reopen")
		}
		if len(second.Entries) != 1 || len(second.Categories) != 1 {
			t.Errorf("expected no duplicates, got %d entries and %d categories", len(second.Entries), len(second.Categories))
		}
	})

	t.Run("keeps_user_categories_first", func(t *testing.T) {
		s := setupServices(t)
		owner := testutil.NewOwnerID()
		period := testutil.CreateTestPeriod(t, s.db, owner, 2024, 3)
		testutil.CreateTestCategory(t, s.db, period.ID, "Groceries", 0)
		testutil.CreateTestObligation(t, s.db, owner, calendar.New(2024, 3, 20))

		view, err := s.periods.OpenPeriod(context.Background(), owner, 2024, 3)
		testutil.AssertNoError(t, err)

		if len(view.Categories) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(view.Categories))
		}
		if view.Categories[1].Name != models.BillsCategoryName || view.Categories[1].DisplayOrder != 1 {
			t.Errorf("expected Bills appended at display order 1, got %+v", view.Categories[1])
		}
	})

	t.Run("heuristic_match_on_manual_entry", func(t *testing.T) {
		s := setupServices(t)
		owner := testutil.NewOwnerID()
		ob := testutil.CreateTestObligation(t, s.db, owner, calendar.New(2024, 3, 5))
		ob.IsAutomated = false
		if err := s.db.Save(ob).Error; err != nil {
			t.Fatalf("failed to update obligation: %v", err)
		}
		testutil.CreateTestEntry(t, s.db, owner, ob.Name+" payment", decimal.NewFromInt(-100), calendar.New(2024, 3, 6))

		view, err := s.periods.OpenPeriod(context.Background(), owner, 2024, 3)
		testutil.AssertNoError(t, err)

		annotated := view.Obligations[0]
		if annotated.MatchTier != recurring.TierFuzzyName {
			t.Errorf("expected fuzzy match, got %q", annotated.MatchTier)
		}
		if annotated.Status != recurring.StatusPartial {
			t.Errorf("expected partial, got %s", annotated.Status)
		}
	})

	t.Run("invalid_month", func(t *testing.T) {
		s := setupServices(t)
		_, err := s.periods.OpenPeriod(context.Background(), testutil.NewOwnerID(), 2024, 13)
		testutil.AssertAppError(t, err, "INVALID_PERIOD")
	})

	t.Run("concurrent_open_creates_one_category", func(t *testing.T) {
		s := setupServices(t)
		owner := testutil.NewOwnerID()
		testutil.CreateTestObligation(t, s.db, owner, calendar.New(2024, 3, 1))
		sqlDB, err := s.db.DB()
		testutil.AssertNoError(t, err)
		sqlDB.SetMaxOpenConns(1)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.periods.OpenPeriod(context.Background(), owner, 2024, 3); err != nil {
					t.Errorf("open period: %v", err)
				}
			}()
		}
		wg.Wait()

		var count int64
		s.db.Model(&models.BudgetCategory{}).Where("name = ?", models.BillsCategoryName).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 Bills category, got %d", count)
		}
	})
}

func TestSyncCurrentPeriod(t *testing.T) {
	s := setupServices(t)
	owner := testutil.NewOwnerID()
	testutil.CreateTestObligation(t, s.db, owner, calendar.New(2024, 3, 1))

	result, err := s.periods.SyncCurrentPeriod(context.Background(), owner)
	testutil.AssertNoError(t, err)

	if result.Period.Year != 2024 || result.Period.Month != 3 {
		t.Errorf("expected March 2024, got %d-%d", result.Period.Year, result.Period.Month)
	}
	if len(result.Created) != 1 {
		t.Errorf("expected 1 created entry, got %d", len(result.Created))
	}
}

// obligationsDown fails every obligation load.
type obligationsDown struct {
	recurring.Store
}

func (obligationsDown) LoadObligations(context.Context, string) ([]models.Obligation, error) {
	return nil, apperrors.ErrPersistence
}

func TestOpenPeriod_ServesStaleViewWhenObligationsFail(t *testing.T) {
	s := setupServices(t)
	owner := testutil.NewOwnerID()
	testutil.CreateTestObligation(t, s.db, owner, calendar.New(2024, 3, 1))

	if _, err := s.periods.OpenPeriod(context.Background(), owner, 2024, 3); err != nil {
		t.Fatalf("healthy open failed: %v", err)
	}

	engine := recurring.NewEngine(obligationsDown{store.NewGormStore(s.db)}, recurring.FixedClock(testToday), nil, nil)
	view, err := NewPeriodService(engine).OpenPeriod(context.Background(), owner, 2024, 3)
	testutil.AssertNoError(t, err)

	if view.Period == nil {
		t.Fatal("expected the period to be returned")
	}
	if len(view.Categories) != 1 || view.Categories[0].Name != models.BillsCategoryName {
		t.Errorf("expected the existing Bills category, got %+v", view.Categories)
	}
	if len(view.Entries) != 1 {
		t.Errorf("expected the recorded entry, got %d", len(view.Entries))
	}
	if len(view.Obligations) != 0 {
		t.Errorf("expected no annotated obligations, got %d", len(view.Obligations))
	}
	if len(view.Issues) != 1 || view.Issues[0].Step != recurring.StepLoadObligations {
		t.Errorf("expected a load_obligations issue, got %+v", view.Issues)
	}
}
