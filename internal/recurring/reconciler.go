package recurring

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"budgetry/internal/calendar"
	"budgetry/internal/logger"
	"budgetry/internal/models"
)

const autoChargeNote = "Automatic charge recorded for a recurring obligation"

type occurrenceKey struct {
	obligationID string
	date         calendar.Date
}

// Reconcile records a ledger entry for every occurrence in window of an
// active, automated obligation that is due on or before today and has no
// entry yet. Running it again with the same inputs creates nothing: the
// (obligation, date) pair is checked against existing entries and the store
// enforces it as a unique key.
//
// A failure on one obligation is logged and reported, and the remaining
// obligations are still processed.
func (e *Engine) Reconcile(
	ctx context.Context,
	categoryIDs map[models.ObligationGroup]string,
	window calendar.Window,
	obligations []models.Obligation,
	existing []models.Transaction,
	today calendar.Date,
) ([]models.Transaction, []SyncIssue) {
	ctx, span := tracer.Start(ctx, "recurring.Reconcile")
	defer span.End()

	recorded := make(map[occurrenceKey]bool, len(existing))
	for _, entry := range existing {
		if entry.ObligationID != nil {
			recorded[occurrenceKey{*entry.ObligationID, entry.Date}] = true
		}
	}

	var (
		created []models.Transaction
		issues  []SyncIssue
	)
	for i := range obligations {
		ob := &obligations[i]
		if !ob.IsActive || !ob.IsAutomated {
			continue
		}

		for _, d := range calendar.Occurrences(ob.NextDueDate, ob.BillingPeriod, window) {
			if d.After(today) {
				continue
			}
			key := occurrenceKey{ob.ID, d}
			if recorded[key] {
				continue
			}

			entry := newRecurringEntry(ob, d, ob.Name, autoChargeNote, categoryIDs[ob.Group])
			ok, err := e.store.InsertEntry(ctx, entry)
			if err != nil {
				e.metrics.IncrFailure(StepInsertEntry)
				issue := SyncIssue{
					Step:         StepInsertEntry,
					ObligationID: ob.ID,
					Date:         d.String(),
					Message:      "failed to record recurring entry",
					Err:          err,
				}
				logIssue(issue)
				issues = append(issues, issue)
				continue
			}
			recorded[key] = true
			if !ok {
				// recorded concurrently by another pass
				continue
			}
			e.metrics.IncrEntryCreated("reconcile")
			logger.Get().Infow("recorded recurring entry",
				"obligation_id", ob.ID, "date", d.String(), "amount", entry.Amount.String())
			created = append(created, *entry)
		}
	}

	span.SetAttributes(attribute.Int("entries.created", len(created)))
	return created, issues
}

func newRecurringEntry(ob *models.Obligation, d calendar.Date, name, notes, categoryID string) *models.Transaction {
	obligationID := ob.ID
	entry := &models.Transaction{
		UserID:       ob.UserID,
		Name:         name,
		Amount:       ob.Amount.Abs().Neg(),
		Date:         d,
		Source:       models.SourceRecurring,
		ObligationID: &obligationID,
		Notes:        notes,
	}
	if categoryID != "" {
		cat := categoryID
		entry.CategoryID = &cat
	}
	return entry
}
