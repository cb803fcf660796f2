package models

import (
	"time"

	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
)

// Names and colours of the synthetic recurring categories.
const (
	BillsCategoryName         = "Bills"
	SubscriptionsCategoryName = "Subscriptions"

	billsColor         = "#ef4444"
	subscriptionsColor = "#8b5cf6"
)

// RecurringCategoryColor returns the display colour for a synthetic category.
func RecurringCategoryColor(name string) string {
	if name == SubscriptionsCategoryName {
		return subscriptionsColor
	}
	return billsColor
}

// BudgetPeriod is a user's budget allocation for one calendar month.
type BudgetPeriod struct {
	Base
	UserID         string          `gorm:"not null;uniqueIndex:idx_budget_periods_user_month,priority:1" json:"user_id"`
	Year           int             `gorm:"not null;uniqueIndex:idx_budget_periods_user_month,priority:2" json:"year"`
	Month          int             `gorm:"not null;uniqueIndex:idx_budget_periods_user_month,priority:3" json:"month"`
	ExpectedIncome decimal.Decimal `gorm:"type:DECIMAL(20,8);not null;default:0" json:"expected_income"`

	// Relationships
	Categories []BudgetCategory `gorm:"foreignKey:BudgetPeriodID" json:"categories,omitempty"`
}

// Window returns the calendar month the period covers.
func (p *BudgetPeriod) Window() calendar.Window {
	return calendar.MonthWindow(p.Year, time.Month(p.Month))
}

// BudgetCategory is a spending bucket inside a budget period. IsRecurring is
// reserved for the synthetic Bills and Subscriptions categories.
type BudgetCategory struct {
	Base
	BudgetPeriodID string          `gorm:"type:uuid;not null;index" json:"budget_period_id"`
	Name           string          `gorm:"not null" json:"name"`
	BudgetCap      decimal.Decimal `gorm:"type:DECIMAL(20,8);not null" json:"budget_cap"`
	IsRecurring    bool            `gorm:"not null" json:"is_recurring"`
	DisplayOrder   int             `gorm:"not null" json:"display_order"`
	Color          string          `json:"color,omitempty"`
}
