package recurring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetry/internal/calendar"
	apperrors "budgetry/internal/errors"
	"budgetry/internal/logger"
	"budgetry/internal/models"
	"budgetry/internal/recurring"
	"budgetry/internal/store"
)

const owner = "0192f0c4-0000-7000-8000-00000000abcd"

var march15 = calendar.New(2024, 3, 15)

func init() {
	logger.Init("test", "error")
}

// failingStore injects errors into selected store calls.
type failingStore struct {
	recurring.Store
	loadObligations error
	loadEntries     error
	listCategories  error
	upsertCategory  error
	deleteCategory  error
	updateCursor    error
	// insertFor fails InsertEntry for one obligation id
	insertFor string
}

func (f *failingStore) LoadObligations(ctx context.Context, ownerID string) ([]models.Obligation, error) {
	if f.loadObligations != nil {
		return nil, f.loadObligations
	}
	return f.Store.LoadObligations(ctx, ownerID)
}

func (f *failingStore) LoadEntriesInRange(ctx context.Context, ownerID string, start, end calendar.Date) ([]models.Transaction, error) {
	if f.loadEntries != nil {
		return nil, f.loadEntries
	}
	return f.Store.LoadEntriesInRange(ctx, ownerID, start, end)
}

func (f *failingStore) ListCategories(ctx context.Context, periodID string) ([]models.BudgetCategory, error) {
	if f.listCategories != nil {
		return nil, f.listCategories
	}
	return f.Store.ListCategories(ctx, periodID)
}

func (f *failingStore) UpsertCategory(ctx context.Context, periodID, name string, budgetCap decimal.Decimal) (*models.BudgetCategory, error) {
	if f.upsertCategory != nil {
		return nil, f.upsertCategory
	}
	return f.Store.UpsertCategory(ctx, periodID, name, budgetCap)
}

func (f *failingStore) DeleteCategory(ctx context.Context, categoryID string) error {
	if f.deleteCategory != nil {
		return f.deleteCategory
	}
	return f.Store.DeleteCategory(ctx, categoryID)
}

func (f *failingStore) UpdateObligationCursor(ctx context.Context, obligationID string, next calendar.Date) error {
	if f.updateCursor != nil {
		return f.updateCursor
	}
	return f.Store.UpdateObligationCursor(ctx, obligationID, next)
}

func (f *failingStore) InsertEntry(ctx context.Context, entry *models.Transaction) (bool, error) {
	if f.insertFor != "" && entry.IsLinkedTo(f.insertFor) {
		return false, apperrors.Wrap(apperrors.ErrPersistence, errors.New("disk full"))
	}
	return f.Store.InsertEntry(ctx, entry)
}

func (f *failingStore) WithinTx(ctx context.Context, fn func(recurring.Store) error) error {
	return f.Store.WithinTx(ctx, func(tx recurring.Store) error {
		inner := *f
		inner.Store = tx
		return fn(&inner)
	})
}

type fixture struct {
	mem      *store.MemoryStore
	rent     *models.Obligation
	internet *models.Obligation
	gym      *models.Obligation
	yearly   *models.Obligation
}

func obligation(name string, amount int64, period calendar.BillingPeriod, due string, group models.ObligationGroup) *models.Obligation {
	return &models.Obligation{
		UserID:        owner,
		Name:          name,
		Amount:        decimal.NewFromInt(amount),
		BillingPeriod: period,
		NextDueDate:   calendar.MustParse(due),
		Group:         group,
		IsActive:      true,
		IsAutomated:   true,
	}
}

// newFixture seeds March 2024 with three bills and a weekly subscription.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		mem:      store.NewMemoryStore(),
		rent:     obligation("Rent", 1000, calendar.Monthly, "2024-03-01", models.GroupBill),
		internet: obligation("Internet", 60, calendar.Monthly, "2024-03-20", models.GroupBill),
		gym:      obligation("Gym", 10, calendar.Weekly, "2024-03-04", models.GroupSubscription),
		yearly:   obligation("Insurance", 200, calendar.Yearly, "2024-06-01", models.GroupBill),
	}
	for _, ob := range []*models.Obligation{f.rent, f.internet, f.gym, f.yearly} {
		require.NoError(t, f.mem.CreateObligation(context.Background(), ob))
	}
	return f
}

func (f *fixture) period(t *testing.T, s recurring.Store) *models.BudgetPeriod {
	t.Helper()
	p, err := s.FindOrCreatePeriod(context.Background(), owner, 2024, time.March)
	require.NoError(t, err)
	return p
}

func categoryByName(t *testing.T, s recurring.Store, periodID, name string) *models.BudgetCategory {
	t.Helper()
	cats, err := s.ListCategories(context.Background(), periodID)
	require.NoError(t, err)
	for i := range cats {
		if cats[i].Name == name {
			return &cats[i]
		}
	}
	return nil
}

func entriesFor(entries []models.Transaction, obligationID string) []models.Transaction {
	var out []models.Transaction
	for _, e := range entries {
		if e.IsLinkedTo(obligationID) {
			out = append(out, e)
		}
	}
	return out
}

func TestSync_CategoriesMatchTotals(t *testing.T) {
	f := newFixture(t)
	engine := recurring.NewEngine(f.mem, recurring.FixedClock(march15), nil, nil)
	period := f.period(t, f.mem)

	result, err := engine.Sync(context.Background(), period)
	require.NoError(t, err)
	assert.Empty(t, result.Issues)

	bills := categoryByName(t, f.mem, period.ID, models.BillsCategoryName)
	require.NotNil(t, bills)
	assert.Equal(t, "1060", bills.BudgetCap.String())
	assert.True(t, bills.IsRecurring)

	subs := categoryByName(t, f.mem, period.ID, models.SubscriptionsCategoryName)
	require.NotNil(t, subs)
	assert.Equal(t, "40", subs.BudgetCap.String())

	assert.Equal(t, bills.ID, result.CategoryIDs[models.GroupBill])
	assert.Equal(t, subs.ID, result.CategoryIDs[models.GroupSubscription])
}

func TestSync_RecordsDueAutomatedOccurrences(t *testing.T) {
	f := newFixture(t)
	f.internet.IsAutomated = false
	require.NoError(t, f.mem.UpdateObligation(context.Background(), f.internet))
	engine := recurring.NewEngine(f.mem, recurring.FixedClock(calendar.New(2024, 3, 25)), nil, nil)
	period := f.period(t, f.mem)

	result, err := engine.Sync(context.Background(), period)
	require.NoError(t, err)

	require.Len(t, result.Created, 5)
	rent := entriesFor(result.Created, f.rent.ID)
	require.Len(t, rent, 1)
	assert.Equal(t, "2024-03-01", rent[0].Date.String())
	assert.Equal(t, "-1000", rent[0].Amount.String())
	assert.Equal(t, models.SourceRecurring, rent[0].Source)
	require.NotNil(t, rent[0].CategoryID)
	assert.Equal(t, result.CategoryIDs[models.GroupBill], *rent[0].CategoryID)

	gym := entriesFor(result.Created, f.gym.ID)
	require.Len(t, gym, 4)
	assert.Equal(t, "2024-03-25", gym[3].Date.String())

	assert.Empty(t, entriesFor(result.Created, f.internet.ID), "manual obligations are never auto-recorded")
	assert.Len(t, result.Entries, 5)
}

func TestSync_SkipsFutureAndInactive(t *testing.T) {
	f := newFixture(t)
	f.rent.IsActive = false
	require.NoError(t, f.mem.UpdateObligation(context.Background(), f.rent))
	engine := recurring.NewEngine(f.mem, recurring.FixedClock(march15), nil, nil)

	result, err := engine.Sync(context.Background(), f.period(t, f.mem))
	require.NoError(t, err)

	assert.Empty(t, entriesFor(result.Created, f.rent.ID))
	assert.Empty(t, entriesFor(result.Created, f.internet.ID))
	assert.Len(t, entriesFor(result.Created, f.gym.ID), 2)
	for _, e := range result.Created {
		assert.False(t, e.Date.After(march15))
	}
}

func TestSync_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	engine := recurring.NewEngine(f.mem, recurring.FixedClock(march15), nil, nil)
	period := f.period(t, f.mem)

	first, err := engine.Sync(context.Background(), period)
	require.NoError(t, err)
	require.Len(t, first.Created, 3)

	second, err := engine.Sync(context.Background(), period)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Len(t, second.Entries, 3)

	cats, err := f.mem.ListCategories(context.Background(), period.ID)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}

func TestSync_DoesNotMoveCursor(t *testing.T) {
	f := newFixture(t)
	engine := recurring.NewEngine(f.mem, recurring.FixedClock(march15), nil, nil)

	_, err := engine.Sync(context.Background(), f.period(t, f.mem))
	require.NoError(t, err)

	rent, err := f.mem.GetObligation(context.Background(), owner, f.rent.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", rent.NextDueDate.String())
}

func TestSync_ZeroTotalKeepsCategoryWhileGroupExists(t *testing.T) {
	f := newFixture(t)
	engine := recurring.NewEngine(f.mem, recurring.FixedClock(march15), nil, nil)
	period := f.period(t, f.mem)
	_, err := engine.Sync(context.Background(), period)
	require.NoError(t, err)

	f.gym.IsActive = false
	require.NoError(t, f.mem.UpdateObligation(context.Background(), f.gym))

	_, err = engine.Sync(context.Background(), period)
	require.NoError(t, err)

	subs := categoryByName(t, f.mem, period.ID, models.SubscriptionsCategoryName)
	require.NotNil(t, subs)
	assert.True(t, subs.BudgetCap.IsZero())
}

func TestSync_RemovedGroupDeletesCategoryAndUnlinksEntries(t *testing.T) {
	f := newFixture(t)
	engine := recurring.NewEngine(f.mem, recurring.FixedClock(march15), nil, nil)
	period := f.period(t, f.mem)
	_, err := engine.Sync(context.Background(), period)
	require.NoError(t, err)

	require.NoError(t, engine.DeleteObligation(context.Background(), f.gym))
	result, err := engine.Sync(context.Background(), period)
	require.NoError(t, err)
	assert.Empty(t, result.Issues)

	assert.Nil(t, categoryByName(t, f.mem, period.ID, models.SubscriptionsCategoryName))
	_, ok := result.CategoryIDs[models.GroupSubscription]
	assert.False(t, ok)

	entries, err := f.mem.LoadEntriesInRange(context.Background(), owner, period.Window().Start, period.Window().End)
	require.NoError(t, err)
	gymEntries := 0
	for _, e := range entries {
		if e.Name == "Gym" {
			gymEntries++
			assert.Nil(t, e.CategoryID)
			assert.Nil(t, e.ObligationID)
		}
	}
	assert.Equal(t, 2, gymEntries, "ledger history survives the obligation")
}

func TestSync_FailedDeleteZeroesCap(t *testing.T) {
	f := newFixture(t)
	period := f.period(t, f.mem)
	_, err := recurring.NewEngine(f.mem, recurring.FixedClock(march15), nil, nil).Sync(context.Background(), period)
	require.NoError(t, err)
	require.NoError(t, f.mem.DeleteObligation(context.Background(), f.gym.ID))

	failing := &failingStore{Store: f.mem, deleteCategory: apperrors.ErrPersistence}
	result, err := recurring.NewEngine(failing, recurring.FixedClock(march15), nil, nil).Sync(context.Background(), period)
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, recurring.StepDeleteCategory, result.Issues[0].Step)
	assert.Equal(t, "subscription", result.Issues[0].Group)

	subs := categoryByName(t, f.mem, period.ID, models.SubscriptionsCategoryName)
	require.NotNil(t, subs)
	assert.True(t, subs.BudgetCap.IsZero())
}

func TestSync_UpsertFailureStillReconciles(t *testing.T) {
	f := newFixture(t)
	failing := &failingStore{Store: f.mem, upsertCategory: apperrors.ErrPersistence}
	engine := recurring.NewEngine(failing, recurring.FixedClock(march15), nil, nil)

	result, err := engine.Sync(context.Background(), f.period(t, f.mem))
	require.NoError(t, err)

	assert.Len(t, result.Issues, 2)
	require.Len(t, result.Created, 3)
	for _, e := range result.Created {
		assert.Nil(t, e.CategoryID)
	}
}

func TestSync_InsertFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	failing := &failingStore{Store: f.mem, insertFor: f.rent.ID}
	engine := recurring.NewEngine(failing, recurring.FixedClock(march15), nil, nil)

	result, err := engine.Sync(context.Background(), f.period(t, f.mem))
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, recurring.StepInsertEntry, result.Issues[0].Step)
	assert.Equal(t, f.rent.ID, result.Issues[0].ObligationID)
	assert.Equal(t, "2024-03-01", result.Issues[0].Date)
	assert.Len(t, entriesFor(result.Created, f.gym.ID), 2)
}

func TestSync_EntriesUnavailable(t *testing.T) {
	f := newFixture(t)
	failing := &failingStore{Store: f.mem, loadEntries: apperrors.ErrPersistence}
	engine := recurring.NewEngine(failing, recurring.FixedClock(march15), nil, nil)
	period := f.period(t, f.mem)

	result, err := engine.Sync(context.Background(), period)
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, recurring.StepLoadEntries, result.Issues[0].Step)
	assert.Empty(t, result.Created)
	assert.NotNil(t, categoryByName(t, f.mem, period.ID, models.BillsCategoryName))
}

func TestSync_ObligationsUnavailable(t *testing.T) {
	f := newFixture(t)
	failing := &failingStore{Store: f.mem, loadObligations: apperrors.ErrPersistence}
	engine := recurring.NewEngine(failing, recurring.FixedClock(march15), nil, nil)

	period := f.period(t, f.mem)

	// a healthy pass first, so there are categories and entries to keep
	_, err := recurring.NewEngine(f.mem, recurring.FixedClock(march15), nil, nil).Sync(context.Background(), period)
	require.NoError(t, err)
	bills := categoryByName(t, f.mem, period.ID, models.BillsCategoryName)
	require.NotNil(t, bills)

	result, err := engine.Sync(context.Background(), period)
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, recurring.StepLoadObligations, result.Issues[0].Step)
	assert.True(t, apperrors.Is(result.Issues[0].Err, apperrors.ErrPersistence))
	assert.Empty(t, result.Obligations)
	assert.Empty(t, result.Created)
	assert.Len(t, result.Entries, 3)

	kept := categoryByName(t, f.mem, period.ID, models.BillsCategoryName)
	require.NotNil(t, kept)
	assert.True(t, bills.BudgetCap.Equal(kept.BudgetCap))
}

func TestSync_ListCategoriesFailure(t *testing.T) {
	f := newFixture(t)
	failing := &failingStore{Store: f.mem, listCategories: apperrors.ErrPersistence}
	engine := recurring.NewEngine(failing, recurring.FixedClock(march15), nil, nil)

	result, err := engine.Sync(context.Background(), f.period(t, f.mem))
	require.NoError(t, err)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, recurring.StepListCategories, result.Issues[0].Step)
	assert.Len(t, result.Created, 3)
}

func TestAnnotate_Statuses(t *testing.T) {
	f := newFixture(t)
	engine := recurring.NewEngine(f.mem, recurring.FixedClock(march15), nil, nil)
	result, err := engine.Sync(context.Background(), f.period(t, f.mem))
	require.NoError(t, err)

	annotated := engine.Annotate(result.Obligations, result.Entries, result.Window, result.Today)
	byName := make(map[string]recurring.AnnotatedObligation, len(annotated))
	for _, a := range annotated {
		byName[a.Name] = a
	}

	rent := byName["Rent"]
	assert.Equal(t, recurring.StatusPaid, rent.Status)
	assert.Equal(t, recurring.TierLinked, rent.MatchTier)
	assert.Equal(t, "2024-04-01", rent.DisplayDueDate.String())

	gym := byName["Gym"]
	assert.Equal(t, recurring.StatusPartial, gym.Status)
	assert.Equal(t, 2, gym.PaidCount)
	assert.Equal(t, 2, gym.FutureCount)
	assert.Equal(t, 4, gym.OccurrencesCount)

	assert.Equal(t, recurring.StatusUpcoming, byName["Internet"].Status)

	// ordered by next due date
	assert.Equal(t, "Rent", annotated[0].Name)
	assert.Equal(t, "Insurance", annotated[len(annotated)-1].Name)
}

func TestAnnotate_HeuristicEntryIsNotShared(t *testing.T) {
	mem := store.NewMemoryStore()
	first := obligation("Streaming", 15, calendar.Monthly, "2024-03-05", models.GroupSubscription)
	second := obligation("Streaming", 15, calendar.Monthly, "2024-03-10", models.GroupSubscription)
	engine := recurring.NewEngine(mem, recurring.FixedClock(march15), recurring.NewMatcher(true), nil)

	entry := models.Transaction{
		Base:   models.Base{ID: "e1"},
		UserID: owner, Name: "streaming", Amount: decimal.NewFromInt(-15),
		Date: calendar.New(2024, 3, 5), Source: models.SourceRecurring,
	}
	first.ID, second.ID = "a", "b"

	annotated := engine.Annotate([]models.Obligation{*second, *first}, []models.Transaction{entry}, calendar.MonthWindow(2024, time.March), march15)
	require.Len(t, annotated, 2)

	assert.Equal(t, "a", annotated[0].ID)
	assert.Equal(t, recurring.TierSourceName, annotated[0].MatchTier)
	assert.Equal(t, []string{"e1"}, annotated[0].MatchedEntryIDs)

	assert.Equal(t, recurring.TierNone, annotated[1].MatchTier)
	assert.Empty(t, annotated[1].MatchedEntryIDs)
	assert.Equal(t, recurring.StatusOverdue, annotated[1].Status)
}

func TestAnnotate_InactiveObligationsSkipHeuristics(t *testing.T) {
	ob := obligation("Rent", 1000, calendar.Monthly, "2024-03-01", models.GroupBill)
	ob.ID = "rent"
	ob.IsActive = false
	engine := recurring.NewEngine(store.NewMemoryStore(), recurring.FixedClock(march15), recurring.NewMatcher(true), nil)

	entry := models.Transaction{
		Base:   models.Base{ID: "e1"},
		UserID: owner, Name: "Rent", Amount: decimal.NewFromInt(-1000),
		Date: calendar.New(2024, 3, 1), Source: models.SourceRecurring,
	}
	annotated := engine.Annotate([]models.Obligation{*ob}, []models.Transaction{entry}, calendar.MonthWindow(2024, time.March), march15)
	require.Len(t, annotated, 1)
	assert.Equal(t, recurring.TierNone, annotated[0].MatchTier)
}
