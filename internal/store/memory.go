package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
	apperrors "budgetry/internal/errors"
	"budgetry/internal/models"
	"budgetry/internal/pagination"
	"budgetry/internal/recurring"
)

type memState struct {
	obligations map[string]models.Obligation
	entries     map[string]models.Transaction
	periods     map[string]models.BudgetPeriod
	categories  map[string]models.BudgetCategory
}

func newMemState() *memState {
	return &memState{
		obligations: make(map[string]models.Obligation),
		entries:     make(map[string]models.Transaction),
		periods:     make(map[string]models.BudgetPeriod),
		categories:  make(map[string]models.BudgetCategory),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.obligations {
		c.obligations[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = cloneEntry(v)
	}
	for k, v := range s.periods {
		c.periods[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	return c
}

func cloneEntry(e models.Transaction) models.Transaction {
	if e.ObligationID != nil {
		id := *e.ObligationID
		e.ObligationID = &id
	}
	if e.CategoryID != nil {
		id := *e.CategoryID
		e.CategoryID = &id
	}
	return e
}

// MemoryStore is an in-process recurring.Store. It backs the sample data
// mode and tests. WithinTx snapshots the state and restores it if fn fails.
type MemoryStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
}

var _ recurring.Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, state: newMemState()}
}

// lock acquires the store mutex unless the caller already runs inside
// WithinTx, which holds it for the whole unit of work.
func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func stamp(b *models.Base) {
	b.Touch(time.Now())
}

// SeedEntry stores a ledger entry as-is, assigning an id when missing.
// Manual entries are written by other parts of the system; tests and the
// sample provider use this to stand in for them.
func (s *MemoryStore) SeedEntry(entry models.Transaction) models.Transaction {
	defer s.lock()()
	stamp(&entry.Base)
	s.state.entries[entry.ID] = cloneEntry(entry)
	return entry
}

// SeedCategory stores a budget category as-is, assigning an id when missing.
func (s *MemoryStore) SeedCategory(cat models.BudgetCategory) models.BudgetCategory {
	defer s.lock()()
	stamp(&cat.Base)
	s.state.categories[cat.ID] = cat
	return cat
}

func sortObligations(obs []models.Obligation) {
	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].Name != obs[j].Name {
			return obs[i].Name < obs[j].Name
		}
		return obs[i].ID < obs[j].ID
	})
}

func (s *MemoryStore) LoadObligations(ctx context.Context, ownerID string) ([]models.Obligation, error) {
	defer s.lock()()
	out := []models.Obligation{}
	for _, ob := range s.state.obligations {
		if ob.UserID == ownerID {
			out = append(out, ob)
		}
	}
	sortObligations(out)
	return out, nil
}

func (s *MemoryStore) ListObligations(ctx context.Context, ownerID string, filter recurring.ObligationFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Obligation], error) {
	all, err := s.LoadObligations(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	filtered := all[:0]
	for i := range all {
		if filter.Matches(&all[i]) {
			filtered = append(filtered, all[i])
		}
	}
	result := pagination.Slice(filtered, page)
	return &result, nil
}

func (s *MemoryStore) GetObligation(ctx context.Context, ownerID, obligationID string) (*models.Obligation, error) {
	defer s.lock()()
	ob, ok := s.state.obligations[obligationID]
	if !ok || ob.UserID != ownerID {
		return nil, apperrors.ErrObligationNotFound
	}
	return &ob, nil
}

func (s *MemoryStore) CreateObligation(ctx context.Context, ob *models.Obligation) error {
	defer s.lock()()
	stamp(&ob.Base)
	s.state.obligations[ob.ID] = *ob
	return nil
}

func (s *MemoryStore) UpdateObligation(ctx context.Context, ob *models.Obligation) error {
	defer s.lock()()
	current, ok := s.state.obligations[ob.ID]
	if !ok {
		return apperrors.ErrObligationNotFound
	}
	ob.CreatedAt = current.CreatedAt
	stamp(&ob.Base)
	s.state.obligations[ob.ID] = *ob
	return nil
}

func (s *MemoryStore) DeleteObligation(ctx context.Context, obligationID string) error {
	defer s.lock()()
	if _, ok := s.state.obligations[obligationID]; !ok {
		return apperrors.ErrObligationNotFound
	}
	delete(s.state.obligations, obligationID)
	return nil
}

func (s *MemoryStore) UpdateObligationCursor(ctx context.Context, obligationID string, next calendar.Date) error {
	defer s.lock()()
	ob, ok := s.state.obligations[obligationID]
	if !ok {
		return apperrors.ErrObligationNotFound
	}
	ob.NextDueDate = next
	ob.UpdatedAt = time.Now()
	s.state.obligations[obligationID] = ob
	return nil
}

func (s *MemoryStore) LoadEntriesInRange(ctx context.Context, ownerID string, start, end calendar.Date) ([]models.Transaction, error) {
	defer s.lock()()
	out := []models.Transaction{}
	for _, e := range s.state.entries {
		if e.UserID != ownerID || e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) InsertEntry(ctx context.Context, entry *models.Transaction) (bool, error) {
	defer s.lock()()
	if entry.ObligationID != nil {
		for _, e := range s.state.entries {
			if e.ObligationID != nil && *e.ObligationID == *entry.ObligationID && e.Date.Equal(entry.Date) {
				return false, nil
			}
		}
	}
	stamp(&entry.Base)
	s.state.entries[entry.ID] = cloneEntry(*entry)
	return true, nil
}

func (s *MemoryStore) UnlinkObligationEntries(ctx context.Context, obligationID string) (int64, error) {
	defer s.lock()()
	var n int64
	for id, e := range s.state.entries {
		if e.IsLinkedTo(obligationID) {
			e.ObligationID = nil
			s.state.entries[id] = e
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) UnlinkCategoryEntries(ctx context.Context, categoryID string) (int64, error) {
	defer s.lock()()
	var n int64
	for id, e := range s.state.entries {
		if e.CategoryID != nil && *e.CategoryID == categoryID {
			e.CategoryID = nil
			s.state.entries[id] = e
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) findPeriod(ownerID string, year int, month time.Month) (models.BudgetPeriod, bool) {
	for _, p := range s.state.periods {
		if p.UserID == ownerID && p.Year == year && p.Month == int(month) {
			return p, true
		}
	}
	return models.BudgetPeriod{}, false
}

func (s *MemoryStore) FindOrCreatePeriod(ctx context.Context, ownerID string, year int, month time.Month) (*models.BudgetPeriod, error) {
	defer s.lock()()
	if p, ok := s.findPeriod(ownerID, year, month); ok {
		return &p, nil
	}
	p := models.BudgetPeriod{UserID: ownerID, Year: year, Month: int(month), ExpectedIncome: decimal.Zero}
	stamp(&p.Base)
	s.state.periods[p.ID] = p
	return &p, nil
}

func (s *MemoryStore) FindPeriod(ctx context.Context, ownerID string, year int, month time.Month) (*models.BudgetPeriod, error) {
	defer s.lock()()
	p, ok := s.findPeriod(ownerID, year, month)
	if !ok {
		return nil, apperrors.ErrBudgetPeriodNotFound
	}
	return &p, nil
}

func (s *MemoryStore) listCategories(periodID string) []models.BudgetCategory {
	out := []models.BudgetCategory{}
	for _, c := range s.state.categories {
		if c.BudgetPeriodID == periodID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *MemoryStore) ListCategories(ctx context.Context, periodID string) ([]models.BudgetCategory, error) {
	defer s.lock()()
	return s.listCategories(periodID), nil
}

func (s *MemoryStore) UpsertCategory(ctx context.Context, periodID, name string, budgetCap decimal.Decimal) (*models.BudgetCategory, error) {
	defer s.lock()()
	existing := s.listCategories(periodID)
	for _, c := range existing {
		if c.IsRecurring && c.Name == name {
			c.BudgetCap = budgetCap
			c.UpdatedAt = time.Now()
			s.state.categories[c.ID] = c
			return &c, nil
		}
	}
	c := models.BudgetCategory{
		BudgetPeriodID: periodID,
		Name:           name,
		BudgetCap:      budgetCap,
		IsRecurring:    true,
		DisplayOrder:   len(existing),
		Color:          models.RecurringCategoryColor(name),
	}
	stamp(&c.Base)
	s.state.categories[c.ID] = c
	return &c, nil
}

func (s *MemoryStore) DeleteCategory(ctx context.Context, categoryID string) error {
	defer s.lock()()
	if _, ok := s.state.categories[categoryID]; !ok {
		return apperrors.ErrCategoryNotFound
	}
	delete(s.state.categories, categoryID)
	return nil
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(recurring.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &MemoryStore{mu: s.mu, state: s.state, inTx: true}
	if err := fn(tx); err != nil {
		*s.state = *snapshot
		return err
	}
	return nil
}
