package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"budgetry/internal/calendar"
	"budgetry/internal/models"
	"budgetry/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewOwnerID returns a fresh owner id. Owners are authenticated elsewhere,
// so there is no user row to create.
func NewOwnerID() string {
	return uuid.New()
}

// CreateTestObligation creates an active monthly bill of 100 due on due.
func CreateTestObligation(t *testing.T, db *gorm.DB, ownerID string, due calendar.Date) *models.Obligation {
	t.Helper()
	return CreateTestObligationWith(t, db, &models.Obligation{
		UserID:        ownerID,
		Name:          fmt.Sprintf("Obligation %d", nextID()),
		Amount:        decimal.NewFromInt(100),
		BillingPeriod: calendar.Monthly,
		NextDueDate:   due,
		Group:         models.GroupBill,
		IsActive:      true,
		IsAutomated:   true,
	})
}

// CreateTestObligationWith persists ob as given.
func CreateTestObligationWith(t *testing.T, db *gorm.DB, ob *models.Obligation) *models.Obligation {
	t.Helper()
	if err := db.Create(ob).Error; err != nil {
		t.Fatalf("failed to create test obligation: %v", err)
	}
	return ob
}

// CreateTestPeriod creates an empty budget period.
func CreateTestPeriod(t *testing.T, db *gorm.DB, ownerID string, year, month int) *models.BudgetPeriod {
	t.Helper()

	period := &models.BudgetPeriod{
		UserID:         ownerID,
		Year:           year,
		Month:          month,
		ExpectedIncome: decimal.Zero,
	}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test period: %v", err)
	}
	return period
}

// CreateTestCategory creates a user-defined category in period.
func CreateTestCategory(t *testing.T, db *gorm.DB, periodID, name string, displayOrder int) *models.BudgetCategory {
	t.Helper()

	cat := &models.BudgetCategory{
		BudgetPeriodID: periodID,
		Name:           name,
		BudgetCap:      decimal.NewFromInt(200),
		DisplayOrder:   displayOrder,
	}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return cat
}

// CreateTestEntry creates a manual ledger entry.
func CreateTestEntry(t *testing.T, db *gorm.DB, ownerID, name string, amount decimal.Decimal, date calendar.Date) *models.Transaction {
	t.Helper()

	entry := &models.Transaction{
		UserID: ownerID,
		Name:   name,
		Amount: amount,
		Date:   date,
		Source: models.SourceManual,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return entry
}
