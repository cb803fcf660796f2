package models

import (
	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
)

// TransactionSource records who wrote a ledger entry.
type TransactionSource string

const (
	SourceManual    TransactionSource = "manual"
	SourceRecurring TransactionSource = "recurring"
)

// Transaction is a ledger entry. Expenses carry negative amounts.
//
// ObligationID is only set on recurring entries, and at most one entry may
// exist per (obligation_id, date).
type Transaction struct {
	Base
	UserID       string            `gorm:"not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	Name         string            `gorm:"not null" json:"name"`
	Amount       decimal.Decimal   `gorm:"type:DECIMAL(20,8);not null" json:"amount"`
	Date         calendar.Date     `gorm:"not null;index:idx_transactions_user_date,priority:2;uniqueIndex:idx_transactions_obligation_date,priority:2" json:"date"`
	CategoryID   *string           `gorm:"index" json:"category_id,omitempty"`
	Source       TransactionSource `gorm:"not null" json:"source"`
	ObligationID *string           `gorm:"uniqueIndex:idx_transactions_obligation_date,priority:1" json:"obligation_id,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

// IsLinkedTo reports whether the entry was recorded for obligationID.
func (t *Transaction) IsLinkedTo(obligationID string) bool {
	return t.ObligationID != nil && *t.ObligationID == obligationID
}
