package models

import (
	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
)

// ObligationGroup decides which synthetic budget category an obligation feeds.
type ObligationGroup string

const (
	GroupBill         ObligationGroup = "bill"
	GroupSubscription ObligationGroup = "subscription"
)

// Groups lists every obligation group in sync order.
var Groups = []ObligationGroup{GroupBill, GroupSubscription}

// Valid reports whether g is a known group.
func (g ObligationGroup) Valid() bool {
	return g == GroupBill || g == GroupSubscription
}

// CategoryName is the name of the synthetic category for the group.
func (g ObligationGroup) CategoryName() string {
	if g == GroupSubscription {
		return SubscriptionsCategoryName
	}
	return BillsCategoryName
}

// Obligation is a recurring bill or subscription.
//
// NextDueDate is the earliest occurrence not yet advanced past. It only moves
// forward when occurrences are paid ahead.
type Obligation struct {
	Base
	UserID          string                 `gorm:"not null;index" json:"user_id"`
	Name            string                 `gorm:"not null" json:"name"`
	Amount          decimal.Decimal        `gorm:"type:DECIMAL(20,8);not null" json:"amount"`
	BillingPeriod   calendar.BillingPeriod `gorm:"not null" json:"billing_period"`
	NextDueDate     calendar.Date          `gorm:"not null" json:"next_due_date"`
	Group           ObligationGroup        `gorm:"column:obligation_group;not null;index" json:"group"`
	IsActive        bool                   `gorm:"not null" json:"is_active"`
	IsAutomated     bool                   `gorm:"not null" json:"is_automated"`
	ServiceProvider string                 `json:"service_provider,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
}
