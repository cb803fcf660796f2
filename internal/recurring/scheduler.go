package recurring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"budgetry/internal/calendar"
	apperrors "budgetry/internal/errors"
	"budgetry/internal/logger"
	"budgetry/internal/models"
)

const payAheadNote = "Paid ahead"

// PayResult is the outcome of a pay-ahead batch.
type PayResult struct {
	Entries []models.Transaction `json:"entries"`
	// AlreadyRecorded lists the batch dates that had an entry for the
	// obligation before the batch ran.
	AlreadyRecorded []calendar.Date `json:"already_recorded"`
	NewNextDueDate  calendar.Date   `json:"new_next_due_date"`
}

// PayFuture settles the next count occurrences of ob, starting at its next
// due date, and leaves the cursor one step past the last of them. A date that
// already has an entry for ob counts as settled and is reported in
// AlreadyRecorded instead of being written again. The batch runs in one unit
// of work: on any failure nothing is written and ob is left unchanged.
func (e *Engine) PayFuture(ctx context.Context, ob *models.Obligation, count int) (*PayResult, error) {
	ctx, span := tracer.Start(ctx, "recurring.PayFuture")
	defer span.End()
	span.SetAttributes(
		attribute.String("obligation.id", ob.ID),
		attribute.Int("count", count),
	)

	if count < 1 {
		return nil, apperrors.ErrInvalidPayCount
	}
	if !ob.BillingPeriod.Valid() {
		return nil, apperrors.ErrInvalidBillingPeriod
	}
	if !ob.IsActive {
		return nil, apperrors.ErrObligationInactive
	}

	start := time.Now()
	defer func() { e.metrics.ObserveSync("pay_future", time.Since(start)) }()

	var result *PayResult
	err := e.store.WithinTx(ctx, func(tx Store) error {
		categories := newCategoryResolver(tx, ob)
		entries := make([]models.Transaction, 0, count)
		recorded := []calendar.Date{}

		cursor := ob.NextDueDate
		for i := 1; i <= count; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			categoryID, err := categories.resolve(ctx, cursor)
			if err != nil {
				return err
			}
			label := batchLabel(ob.Name, i, count)
			entry := newRecurringEntry(ob, cursor, label, payAheadNote, categoryID)

			created, err := tx.InsertEntry(ctx, entry)
			if err != nil {
				return err
			}
			if created {
				entries = append(entries, *entry)
			} else {
				recorded = append(recorded, cursor)
				logger.Get().Infow("occurrence already recorded, counted as settled",
					"obligation_id", ob.ID, "date", cursor.String())
			}
			cursor = ob.BillingPeriod.Step(cursor)
		}

		if err := tx.UpdateObligationCursor(ctx, ob.ID, cursor); err != nil {
			return err
		}
		result = &PayResult{Entries: entries, AlreadyRecorded: recorded, NewNextDueDate: cursor}
		return nil
	})
	if err != nil {
		e.metrics.IncrFailure("pay_future")
		logger.Get().Errorw("pay-ahead batch rolled back",
			"obligation_id", ob.ID, "count", count, "error", err)
		return nil, err
	}

	for range result.Entries {
		e.metrics.IncrEntryCreated("pay_ahead")
	}
	ob.NextDueDate = result.NewNextDueDate
	logger.Get().Infow("paid ahead",
		"obligation_id", ob.ID, "count", count, "next_due_date", result.NewNextDueDate.String())
	return result, nil
}

// DeleteObligation detaches ob's recurring entries, keeping them as ledger
// history, and removes the obligation. Both writes commit together.
func (e *Engine) DeleteObligation(ctx context.Context, ob *models.Obligation) error {
	ctx, span := tracer.Start(ctx, "recurring.DeleteObligation")
	defer span.End()
	span.SetAttributes(attribute.String("obligation.id", ob.ID))

	return e.store.WithinTx(ctx, func(tx Store) error {
		n, err := tx.UnlinkObligationEntries(ctx, ob.ID)
		if err != nil {
			return err
		}
		if err := tx.DeleteObligation(ctx, ob.ID); err != nil {
			return err
		}
		logger.Get().Infow("deleted obligation", "obligation_id", ob.ID, "unlinked_entries", n)
		return nil
	})
}

func batchLabel(name string, i, count int) string {
	if count <= 1 {
		return name
	}
	return fmt.Sprintf("%s (%d/%d)", name, i, count)
}

// categoryResolver finds the synthetic category of the budget period an
// entry date falls in. Months without a period yield no category.
type categoryResolver struct {
	store Store
	ob    *models.Obligation
	cache map[string]string
}

func newCategoryResolver(store Store, ob *models.Obligation) *categoryResolver {
	return &categoryResolver{store: store, ob: ob, cache: make(map[string]string)}
}

func (r *categoryResolver) resolve(ctx context.Context, d calendar.Date) (string, error) {
	key := fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	period, err := r.store.FindPeriod(ctx, r.ob.UserID, d.Year, d.Month)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrBudgetPeriodNotFound) {
			r.cache[key] = ""
			return "", nil
		}
		return "", err
	}
	categories, err := r.store.ListCategories(ctx, period.ID)
	if err != nil {
		return "", err
	}

	id := ""
	if cat := findRecurringCategory(categories, r.ob.Group.CategoryName()); cat != nil {
		id = cat.ID
	}
	r.cache[key] = id
	return id, nil
}
