package recurring

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"budgetry/internal/calendar"
	"budgetry/internal/logger"
	"budgetry/internal/models"
)

// Category sync actions reported to metrics.
const (
	actionCreate = "create"
	actionUpdate = "update"
	actionZero   = "zero"
	actionDelete = "delete"
)

// GroupTotal sums amount × occurrences for the active obligations of group.
func GroupTotal(obligations []models.Obligation, group models.ObligationGroup, window calendar.Window) decimal.Decimal {
	total := decimal.Zero
	for i := range obligations {
		ob := &obligations[i]
		if !ob.IsActive || ob.Group != group {
			continue
		}
		n := len(calendar.Occurrences(ob.NextDueDate, ob.BillingPeriod, window))
		total = total.Add(ob.Amount.Mul(decimal.NewFromInt(int64(n))))
	}
	return total
}

func hasGroup(obligations []models.Obligation, group models.ObligationGroup) bool {
	for i := range obligations {
		if obligations[i].Group == group {
			return true
		}
	}
	return false
}

// SyncCategories aligns the synthetic categories of a period with the
// obligation totals for its window and returns the id of each category that
// still exists. Groups are handled independently: a failure in one is
// recorded and the other still runs.
//
// A group whose total is zero keeps its category with a zero cap while any
// obligation of that group exists. Once none remain, entries referencing the
// category are unlinked and the category is deleted; if deletion fails the
// cap is zeroed instead.
func (e *Engine) SyncCategories(ctx context.Context, periodID string, window calendar.Window, obligations []models.Obligation) (map[models.ObligationGroup]string, []SyncIssue) {
	ctx, span := tracer.Start(ctx, "recurring.SyncCategories")
	defer span.End()
	span.SetAttributes(attribute.String("period.id", periodID))

	ids := make(map[models.ObligationGroup]string, len(models.Groups))

	categories, err := e.store.ListCategories(ctx, periodID)
	if err != nil {
		e.metrics.IncrFailure(StepListCategories)
		issue := SyncIssue{Step: StepListCategories, Message: "failed to list budget categories", Err: err}
		logIssue(issue, "period_id", periodID)
		return ids, []SyncIssue{issue}
	}

	var issues []SyncIssue
	for _, group := range models.Groups {
		existing := findRecurringCategory(categories, group.CategoryName())
		total := GroupTotal(obligations, group, window)

		if issue := e.syncGroup(ctx, periodID, group, existing, total, hasGroup(obligations, group), ids); issue != nil {
			e.metrics.IncrFailure(issue.Step)
			logIssue(*issue, "period_id", periodID)
			issues = append(issues, *issue)
		}
	}
	return ids, issues
}

func (e *Engine) syncGroup(
	ctx context.Context,
	periodID string,
	group models.ObligationGroup,
	existing *models.BudgetCategory,
	total decimal.Decimal,
	groupExists bool,
	ids map[models.ObligationGroup]string,
) *SyncIssue {
	name := group.CategoryName()

	if total.IsPositive() {
		if existing != nil && existing.BudgetCap.Equal(total) {
			ids[group] = existing.ID
			return nil
		}
		cat, err := e.store.UpsertCategory(ctx, periodID, name, total)
		if err != nil {
			if existing != nil {
				ids[group] = existing.ID
			}
			return &SyncIssue{Step: StepUpsertCategory, Group: string(group), Message: "failed to upsert recurring category", Err: err}
		}
		action := actionUpdate
		if existing == nil {
			action = actionCreate
		}
		e.metrics.IncrCategoryAction(string(group), action)
		ids[group] = cat.ID
		return nil
	}

	if existing == nil {
		return nil
	}

	if groupExists {
		ids[group] = existing.ID
		if existing.BudgetCap.IsZero() {
			return nil
		}
		if _, err := e.store.UpsertCategory(ctx, periodID, name, decimal.Zero); err != nil {
			return &SyncIssue{Step: StepUpsertCategory, Group: string(group), Message: "failed to zero recurring category", Err: err}
		}
		e.metrics.IncrCategoryAction(string(group), actionZero)
		return nil
	}

	if _, err := e.store.UnlinkCategoryEntries(ctx, existing.ID); err != nil {
		ids[group] = existing.ID
		e.zeroAfterFailedDelete(ctx, periodID, group, existing)
		return &SyncIssue{Step: StepUnlinkCategory, Group: string(group), Message: "failed to unlink entries from recurring category", Err: err}
	}
	if err := e.store.DeleteCategory(ctx, existing.ID); err != nil {
		ids[group] = existing.ID
		e.zeroAfterFailedDelete(ctx, periodID, group, existing)
		return &SyncIssue{Step: StepDeleteCategory, Group: string(group), Message: "failed to delete recurring category", Err: err}
	}
	e.metrics.IncrCategoryAction(string(group), actionDelete)
	return nil
}

// zeroAfterFailedDelete leaves an orphaned category harmless.
func (e *Engine) zeroAfterFailedDelete(ctx context.Context, periodID string, group models.ObligationGroup, existing *models.BudgetCategory) {
	logger.Get().Warnw("recurring category could not be removed, zeroing its cap",
		"period_id", periodID, "group", string(group), "category_id", existing.ID)
	if existing.BudgetCap.IsZero() {
		return
	}
	if _, err := e.store.UpsertCategory(ctx, periodID, existing.Name, decimal.Zero); err != nil {
		logger.Get().Errorw("failed to zero orphaned recurring category",
			"period_id", periodID, "group", string(group), "category_id", existing.ID, "error", err)
		return
	}
	e.metrics.IncrCategoryAction(string(group), actionZero)
}

func findRecurringCategory(categories []models.BudgetCategory, name string) *models.BudgetCategory {
	for i := range categories {
		if categories[i].IsRecurring && categories[i].Name == name {
			return &categories[i]
		}
	}
	return nil
}
