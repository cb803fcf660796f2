// Package recurring keeps ledger entries and budget categories consistent
// with a user's recurring obligations.
//
// A sync pass for one budget period first aligns the synthetic Bills and
// Subscriptions categories with the month's obligation totals, then records
// a ledger entry for every automated occurrence that has fallen due. Reads
// annotate each obligation with its payment status. Paying ahead is a
// separate, explicit operation that advances an obligation's due-date cursor.
package recurring

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"budgetry/internal/calendar"
	"budgetry/internal/logger"
	"budgetry/internal/models"
)

var tracer = otel.Tracer("recurring")

// Recorder receives engine instrumentation. *metrics.Metrics implements it.
type Recorder interface {
	ObserveSync(operation string, d time.Duration)
	IncrEntryCreated(origin string)
	IncrFailure(step string)
	IncrCategoryAction(group, action string)
	IncrHeuristicMatch(tier string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSync(string, time.Duration) {}
func (nopRecorder) IncrEntryCreated(string)           {}
func (nopRecorder) IncrFailure(string)                {}
func (nopRecorder) IncrCategoryAction(string, string) {}
func (nopRecorder) IncrHeuristicMatch(string)         {}

// Steps reported in SyncIssue.Step and failure metrics.
const (
	StepLoadObligations = "load_obligations"
	StepLoadEntries     = "load_entries"
	StepListCategories  = "list_categories"
	StepUpsertCategory  = "upsert_category"
	StepUnlinkCategory  = "unlink_category"
	StepDeleteCategory  = "delete_category"
	StepInsertEntry     = "insert_entry"
)

// SyncIssue describes a sub-step that failed without aborting the pass.
type SyncIssue struct {
	Step         string `json:"step"`
	Group        string `json:"group,omitempty"`
	ObligationID string `json:"obligation_id,omitempty"`
	Date         string `json:"date,omitempty"`
	Message      string `json:"message"`
	Err          error  `json:"-"`
}

func (i SyncIssue) Error() string {
	return fmt.Sprintf("%s: %s", i.Step, i.Message)
}

// SyncResult is the state of a budget period after a sync pass.
type SyncResult struct {
	Period      *models.BudgetPeriod
	Window      calendar.Window
	Today       calendar.Date
	Obligations []models.Obligation
	// Entries holds every ledger entry in the window, including those
	// created by this pass, ordered by date.
	Entries     []models.Transaction
	Created     []models.Transaction
	CategoryIDs map[models.ObligationGroup]string
	Issues      []SyncIssue
}

// Engine runs category synchronization, reconciliation, status
// classification and pay-ahead against a Store.
type Engine struct {
	store   Store
	clock   Clock
	matcher *Matcher
	metrics Recorder
}

// NewEngine wires an Engine. A nil matcher disables fuzzy matching and a nil
// recorder discards instrumentation.
func NewEngine(store Store, clock Clock, matcher *Matcher, rec Recorder) *Engine {
	if matcher == nil {
		matcher = NewMatcher(false)
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	if clock == nil {
		clock = SystemClock{Location: time.UTC}
	}
	return &Engine{store: store, clock: clock, matcher: matcher, metrics: rec}
}

// Today returns the engine clock's current date.
func (e *Engine) Today() calendar.Date {
	return e.clock.Today()
}

// Store returns the engine's persistence port.
func (e *Engine) Store() Store {
	return e.store
}

// Sync brings period in line with its owner's obligations. Sub-step failures
// are collected in SyncResult.Issues and the remaining steps still run. When
// the obligations cannot be loaded, categories are left as they are, nothing
// is recorded and the result carries the window's existing entries.
func (e *Engine) Sync(ctx context.Context, period *models.BudgetPeriod) (*SyncResult, error) {
	ctx, span := tracer.Start(ctx, "recurring.Sync")
	defer span.End()
	span.SetAttributes(
		attribute.String("owner.id", period.UserID),
		attribute.String("period.id", period.ID),
	)

	start := time.Now()
	defer func() { e.metrics.ObserveSync("sync", time.Since(start)) }()

	result := &SyncResult{
		Period: period,
		Window: period.Window(),
		Today:  e.clock.Today(),
	}

	obligations, err := e.store.LoadObligations(ctx, period.UserID)
	if err != nil {
		e.metrics.IncrFailure(StepLoadObligations)
		logger.Get().Errorw("failed to load obligations, serving the period unsynced",
			"owner_id", period.UserID, "period_id", period.ID, "error", err)
		result.Issues = append(result.Issues, SyncIssue{Step: StepLoadObligations, Message: "obligations unavailable", Err: err})
		e.loadStaleEntries(ctx, result)
		return result, nil
	}
	result.Obligations = obligations

	var issues []SyncIssue
	result.CategoryIDs, issues = e.SyncCategories(ctx, period.ID, result.Window, obligations)
	result.Issues = append(result.Issues, issues...)

	entries, err := e.store.LoadEntriesInRange(ctx, period.UserID, result.Window.Start, result.Window.End)
	if err != nil {
		e.metrics.IncrFailure(StepLoadEntries)
		logger.Get().Errorw("failed to load ledger entries, skipping reconciliation",
			"owner_id", period.UserID, "period_id", period.ID, "error", err)
		result.Issues = append(result.Issues, SyncIssue{Step: StepLoadEntries, Message: "ledger entries unavailable", Err: err})
		return result, nil
	}

	created, issues := e.Reconcile(ctx, result.CategoryIDs, result.Window, obligations, entries, result.Today)
	result.Issues = append(result.Issues, issues...)
	result.Created = created
	result.Entries = append(entries, created...)
	sortEntries(result.Entries)

	span.SetAttributes(
		attribute.Int("entries.created", len(created)),
		attribute.Int("issues", len(result.Issues)),
	)
	return result, nil
}

func (e *Engine) loadStaleEntries(ctx context.Context, result *SyncResult) {
	entries, err := e.store.LoadEntriesInRange(ctx, result.Period.UserID, result.Window.Start, result.Window.End)
	if err != nil {
		e.metrics.IncrFailure(StepLoadEntries)
		result.Issues = append(result.Issues, SyncIssue{Step: StepLoadEntries, Message: "ledger entries unavailable", Err: err})
		return
	}
	sortEntries(entries)
	result.Entries = entries
}

// AnnotatedObligation pairs an obligation with its status for the window.
type AnnotatedObligation struct {
	models.Obligation
	Classification
}

// Annotate classifies every obligation against the window's entries.
// Explicitly linked entries are assigned first; name-based tiers then run
// for active obligations in (next due date, name, id) order, and an entry
// attributed to one obligation is never offered to another.
func (e *Engine) Annotate(obligations []models.Obligation, entries []models.Transaction, window calendar.Window, today calendar.Date) []AnnotatedObligation {
	ordered := make([]models.Obligation, len(obligations))
	copy(ordered, obligations)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if c := a.NextDueDate.Compare(b.NextDueDate); c != 0 {
			return c < 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	matches := make(map[string][]models.Transaction, len(ordered))
	tiers := make(map[string]MatchTier, len(ordered))
	for i := range ordered {
		ob := &ordered[i]
		if linked := e.matcher.Linked(ob, entries); len(linked) > 0 {
			matches[ob.ID] = linked
			tiers[ob.ID] = TierLinked
		}
	}

	claimed := make(map[string]bool)
	for i := range ordered {
		ob := &ordered[i]
		if _, done := tiers[ob.ID]; done || !ob.IsActive {
			continue
		}
		limit := len(calendar.Occurrences(ob.NextDueDate, ob.BillingPeriod, window))
		matched, tier := e.matcher.Match(ob, entries, claimed, limit)
		if len(matched) == 0 {
			continue
		}
		for _, m := range matched {
			claimed[m.ID] = true
		}
		matches[ob.ID] = matched
		tiers[ob.ID] = tier
		if tier.Heuristic() {
			e.metrics.IncrHeuristicMatch(string(tier))
			logger.Get().Warnw("obligation matched by name heuristic",
				"obligation_id", ob.ID,
				"tier", string(tier),
				"entries", len(matched),
				"window", window.String(),
			)
		}
	}

	out := make([]AnnotatedObligation, 0, len(ordered))
	for i := range ordered {
		ob := ordered[i]
		c := Classify(&ob, matches[ob.ID], today, window.End)
		c.MatchTier = tiers[ob.ID]
		out = append(out, AnnotatedObligation{Obligation: ob, Classification: c})
	}
	return out
}

func sortEntries(entries []models.Transaction) {
	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].Date.Compare(entries[j].Date); c != 0 {
			return c < 0
		}
		return entries[i].ID < entries[j].ID
	})
}

func logIssue(issue SyncIssue, fields ...interface{}) {
	kv := []interface{}{"step", issue.Step}
	if issue.Group != "" {
		kv = append(kv, "group", issue.Group)
	}
	if issue.ObligationID != "" {
		kv = append(kv, "obligation_id", issue.ObligationID)
	}
	if issue.Date != "" {
		kv = append(kv, "date", issue.Date)
	}
	if issue.Err != nil {
		kv = append(kv, zap.Error(issue.Err))
	}
	kv = append(kv, fields...)
	logger.Get().Errorw(issue.Message, kv...)
}
