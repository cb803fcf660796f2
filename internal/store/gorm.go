// Package store implements the recurring engine's persistence port on top
// of GORM and, for the sample data mode, in memory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgetry/internal/calendar"
	apperrors "budgetry/internal/errors"
	"budgetry/internal/models"
	"budgetry/internal/pagination"
	"budgetry/internal/recurring"
)

// GormStore is the database-backed recurring.Store.
type GormStore struct {
	db *gorm.DB
}

var _ recurring.Store = (*GormStore)(nil)

// NewGormStore creates a GormStore on db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func persistence(err error) error {
	return apperrors.Wrap(apperrors.ErrPersistence, err)
}

func (s *GormStore) LoadObligations(ctx context.Context, ownerID string) ([]models.Obligation, error) {
	var obs []models.Obligation
	if err := s.conn(ctx).Where("user_id = ?", ownerID).Order("name, id").Find(&obs).Error; err != nil {
		return nil, persistence(err)
	}
	return obs, nil
}

func (s *GormStore) ListObligations(ctx context.Context, ownerID string, filter recurring.ObligationFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Obligation], error) {
	page = page.Normalize()

	base := s.conn(ctx).Model(&models.Obligation{}).Where("user_id = ?", ownerID)
	if filter.Group != nil {
		base = base.Where("obligation_group = ?", *filter.Group)
	}
	if filter.IsActive != nil {
		base = base.Where("is_active = ?", *filter.IsActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, persistence(err)
	}

	var obs []models.Obligation
	if err := base.Order("name, id").Offset(page.Offset()).Limit(page.PageSize).Find(&obs).Error; err != nil {
		return nil, persistence(err)
	}

	result := pagination.NewPageResponse(obs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *GormStore) GetObligation(ctx context.Context, ownerID, obligationID string) (*models.Obligation, error) {
	var ob models.Obligation
	if err := s.conn(ctx).Where("id = ? AND user_id = ?", obligationID, ownerID).First(&ob).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrObligationNotFound
		}
		return nil, persistence(err)
	}
	return &ob, nil
}

func (s *GormStore) CreateObligation(ctx context.Context, ob *models.Obligation) error {
	if err := s.conn(ctx).Create(ob).Error; err != nil {
		return persistence(err)
	}
	return nil
}

// obligationColumns are the user-editable columns written by UpdateObligation.
var obligationColumns = []string{
	"name", "amount", "billing_period", "next_due_date", "obligation_group",
	"is_active", "is_automated", "service_provider", "notes", "updated_at",
}

func (s *GormStore) UpdateObligation(ctx context.Context, ob *models.Obligation) error {
	res := s.conn(ctx).Model(ob).Select(obligationColumns).Updates(ob)
	if res.Error != nil {
		return persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrObligationNotFound
	}
	return nil
}

func (s *GormStore) DeleteObligation(ctx context.Context, obligationID string) error {
	res := s.conn(ctx).Where("id = ?", obligationID).Delete(&models.Obligation{})
	if res.Error != nil {
		return persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrObligationNotFound
	}
	return nil
}

func (s *GormStore) UpdateObligationCursor(ctx context.Context, obligationID string, next calendar.Date) error {
	res := s.conn(ctx).Model(&models.Obligation{}).Where("id = ?", obligationID).Update("next_due_date", next)
	if res.Error != nil {
		return persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrObligationNotFound
	}
	return nil
}

func (s *GormStore) LoadEntriesInRange(ctx context.Context, ownerID string, start, end calendar.Date) ([]models.Transaction, error) {
	var entries []models.Transaction
	err := s.conn(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", ownerID, start, end).
		Order("date, id").
		Find(&entries).Error
	if err != nil {
		return nil, persistence(err)
	}
	return entries, nil
}

// InsertEntry relies on the unique (obligation_id, date) index: a conflicting
// insert is dropped and reported as created=false.
func (s *GormStore) InsertEntry(ctx context.Context, entry *models.Transaction) (bool, error) {
	res := s.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "obligation_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(entry)
	if res.Error != nil {
		return false, persistence(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) UnlinkObligationEntries(ctx context.Context, obligationID string) (int64, error) {
	res := s.conn(ctx).Unscoped().Model(&models.Transaction{}).
		Where("obligation_id = ?", obligationID).
		Update("obligation_id", nil)
	if res.Error != nil {
		return 0, persistence(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) UnlinkCategoryEntries(ctx context.Context, categoryID string) (int64, error) {
	res := s.conn(ctx).Unscoped().Model(&models.Transaction{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil)
	if res.Error != nil {
		return 0, persistence(res.Error)
	}
	return res.RowsAffected, nil
}

// FindOrCreatePeriod tolerates concurrent first access: the insert is a
// no-op when another caller created the row, and the row is then re-read.
func (s *GormStore) FindOrCreatePeriod(ctx context.Context, ownerID string, year int, month time.Month) (*models.BudgetPeriod, error) {
	period, err := s.FindPeriod(ctx, ownerID, year, month)
	if err == nil {
		return period, nil
	}
	if !apperrors.Is(err, apperrors.ErrBudgetPeriodNotFound) {
		return nil, err
	}

	created := &models.BudgetPeriod{UserID: ownerID, Year: year, Month: int(month), ExpectedIncome: decimal.Zero}
	if err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(created).Error; err != nil {
		return nil, persistence(err)
	}
	return s.FindPeriod(ctx, ownerID, year, month)
}

func (s *GormStore) FindPeriod(ctx context.Context, ownerID string, year int, month time.Month) (*models.BudgetPeriod, error) {
	var period models.BudgetPeriod
	err := s.conn(ctx).Where("user_id = ? AND year = ? AND month = ?", ownerID, year, int(month)).First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetPeriodNotFound
		}
		return nil, persistence(err)
	}
	return &period, nil
}

func (s *GormStore) ListCategories(ctx context.Context, periodID string) ([]models.BudgetCategory, error) {
	var cats []models.BudgetCategory
	if err := s.conn(ctx).Where("budget_period_id = ?", periodID).Order("display_order, name").Find(&cats).Error; err != nil {
		return nil, persistence(err)
	}
	return cats, nil
}

func (s *GormStore) UpsertCategory(ctx context.Context, periodID, name string, budgetCap decimal.Decimal) (*models.BudgetCategory, error) {
	var cat models.BudgetCategory
	err := s.conn(ctx).
		Where("budget_period_id = ? AND name = ? AND is_recurring = ?", periodID, name, true).
		First(&cat).Error
	switch {
	case err == nil:
		if err := s.conn(ctx).Model(&cat).Update("budget_cap", budgetCap).Error; err != nil {
			return nil, persistence(err)
		}
		cat.BudgetCap = budgetCap
		return &cat, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, persistence(err)
	}

	var count int64
	if err := s.conn(ctx).Model(&models.BudgetCategory{}).Where("budget_period_id = ?", periodID).Count(&count).Error; err != nil {
		return nil, persistence(err)
	}
	cat = models.BudgetCategory{
		BudgetPeriodID: periodID,
		Name:           name,
		BudgetCap:      budgetCap,
		IsRecurring:    true,
		DisplayOrder:   int(count),
		Color:          models.RecurringCategoryColor(name),
	}
	if err := s.conn(ctx).Create(&cat).Error; err != nil {
		return nil, persistence(err)
	}
	return &cat, nil
}

func (s *GormStore) DeleteCategory(ctx context.Context, categoryID string) error {
	res := s.conn(ctx).Where("id = ?", categoryID).Delete(&models.BudgetCategory{})
	if res.Error != nil {
		return persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(recurring.Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
