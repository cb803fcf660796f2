package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "budgetry/internal/errors"
	"budgetry/internal/logger"
	"budgetry/internal/models"
	"budgetry/internal/recurring"
)

// periodService opens budget periods and keeps them in sync with the
// owner's obligations.
type periodService struct {
	engine *recurring.Engine
	flight singleflight.Group
}

// NewPeriodService creates a new PeriodServicer.
func NewPeriodService(engine *recurring.Engine) PeriodServicer {
	return &periodService{engine: engine}
}

// OpenPeriod returns the period for year/month, creating it on first access,
// after a sync pass. Sub-step failures are reported in PeriodView.Issues.
func (s *periodService) OpenPeriod(ctx context.Context, ownerID string, year, month int) (*PeriodView, error) {
	if month < 1 || month > 12 || year < 1900 || year > 9999 {
		return nil, apperrors.ErrInvalidPeriod
	}

	result, err := s.sync(ctx, ownerID, year, time.Month(month))
	if err != nil {
		return nil, err
	}

	view := &PeriodView{
		Period:     result.Period,
		Window:     result.Window,
		Today:      result.Today,
		Categories: []models.BudgetCategory{},
		Entries:    result.Entries,
		Issues:     append([]recurring.SyncIssue{}, result.Issues...),
		Totals: GroupTotals{
			Bills:         recurring.GroupTotal(result.Obligations, models.GroupBill, result.Window),
			Subscriptions: recurring.GroupTotal(result.Obligations, models.GroupSubscription, result.Window),
		},
	}
	if view.Entries == nil {
		view.Entries = []models.Transaction{}
	}

	categories, err := s.engine.Store().ListCategories(ctx, result.Period.ID)
	if err != nil {
		logger.Get().Errorw("failed to list categories for period view",
			"owner_id", ownerID, "period_id", result.Period.ID, "error", err)
		view.Issues = append(view.Issues, recurring.SyncIssue{
			Step: recurring.StepListCategories, Message: "budget categories unavailable", Err: err,
		})
	} else {
		view.Categories = categories
	}

	view.Obligations = s.engine.Annotate(result.Obligations, result.Entries, result.Window, result.Today)
	return view, nil
}

// SyncCurrentPeriod re-syncs the period containing today.
func (s *periodService) SyncCurrentPeriod(ctx context.Context, ownerID string) (*recurring.SyncResult, error) {
	today := s.engine.Today()
	return s.sync(ctx, ownerID, today.Year, today.Month)
}

// sync coalesces concurrent passes for the same owner and month so the
// synthetic categories are created once.
func (s *periodService) sync(ctx context.Context, ownerID string, year int, month time.Month) (*recurring.SyncResult, error) {
	key := fmt.Sprintf("%s/%04d-%02d", ownerID, year, int(month))
	v, err, shared := s.flight.Do(key, func() (interface{}, error) {
		// a caller going away must not fail the others waiting on this pass
		ctx := context.WithoutCancel(ctx)

		period, err := s.engine.Store().FindOrCreatePeriod(ctx, ownerID, year, month)
		if err != nil {
			return nil, err
		}
		result, err := s.engine.Sync(ctx, period)
		if err != nil {
			return nil, err
		}
		logger.Get().Infow("synced budget period",
			"owner_id", ownerID,
			"period_id", period.ID,
			"created", len(result.Created),
			"issues", len(result.Issues),
		)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Get().Debugw("joined in-flight period sync", "owner_id", ownerID, "period", key)
	}
	return v.(*recurring.SyncResult), nil
}
