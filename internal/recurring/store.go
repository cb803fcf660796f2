package recurring

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
	"budgetry/internal/models"
	"budgetry/internal/pagination"
)

// ObligationFilter narrows obligation listings. Nil fields match everything.
type ObligationFilter struct {
	Group    *models.ObligationGroup
	IsActive *bool
}

// Matches reports whether ob passes the filter.
func (f ObligationFilter) Matches(ob *models.Obligation) bool {
	if f.Group != nil && ob.Group != *f.Group {
		return false
	}
	if f.IsActive != nil && ob.IsActive != *f.IsActive {
		return false
	}
	return true
}

// Store is the persistence port used by the engine.
//
// Implementations return apperrors.ErrObligationNotFound,
// apperrors.ErrBudgetPeriodNotFound or apperrors.ErrCategoryNotFound for
// missing rows and wrap every other backend failure in
// apperrors.ErrPersistence.
type Store interface {
	// Obligations
	LoadObligations(ctx context.Context, ownerID string) ([]models.Obligation, error)
	ListObligations(ctx context.Context, ownerID string, filter ObligationFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Obligation], error)
	GetObligation(ctx context.Context, ownerID, obligationID string) (*models.Obligation, error)
	CreateObligation(ctx context.Context, ob *models.Obligation) error
	UpdateObligation(ctx context.Context, ob *models.Obligation) error
	DeleteObligation(ctx context.Context, obligationID string) error
	UpdateObligationCursor(ctx context.Context, obligationID string, next calendar.Date) error

	// Ledger entries
	LoadEntriesInRange(ctx context.Context, ownerID string, start, end calendar.Date) ([]models.Transaction, error)
	// InsertEntry reports created=false, without error, when a recurring
	// entry already exists for the same obligation and date.
	InsertEntry(ctx context.Context, entry *models.Transaction) (created bool, err error)
	UnlinkObligationEntries(ctx context.Context, obligationID string) (int64, error)
	UnlinkCategoryEntries(ctx context.Context, categoryID string) (int64, error)

	// Budget periods and categories
	FindOrCreatePeriod(ctx context.Context, ownerID string, year int, month time.Month) (*models.BudgetPeriod, error)
	FindPeriod(ctx context.Context, ownerID string, year int, month time.Month) (*models.BudgetPeriod, error)
	ListCategories(ctx context.Context, periodID string) ([]models.BudgetCategory, error)
	// UpsertCategory creates the synthetic category called name in the
	// period, or updates its cap if it already exists.
	UpsertCategory(ctx context.Context, periodID, name string, budgetCap decimal.Decimal) (*models.BudgetCategory, error)
	DeleteCategory(ctx context.Context, categoryID string) error

	// WithinTx runs fn against a Store bound to a single unit of work. All
	// writes made through that Store are committed together or not at all.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// Clock yields the current date.
type Clock interface {
	Today() calendar.Date
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Today implements Clock.
func (c SystemClock) Today() calendar.Date {
	return calendar.Today(c.Location)
}

// FixedClock always returns the same date.
type FixedClock calendar.Date

// Today implements Clock.
func (c FixedClock) Today() calendar.Date {
	return calendar.Date(c)
}
