package store

import (
	"context"

	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
	"budgetry/internal/models"
)

// SampleOwnerID owns the data seeded by NewSampleStore.
const SampleOwnerID = "00000000-0000-7000-8000-000000000001"

// NewSampleStore returns a MemoryStore holding a demo owner's obligations,
// anchored around today so every status shows up in the current month.
func NewSampleStore(today calendar.Date) *MemoryStore {
	s := NewMemoryStore()
	ctx := context.Background()

	monthStart := calendar.New(today.Year, today.Month, 1)
	obligations := []models.Obligation{
		{
			Name:          "Rent",
			Amount:        decimal.NewFromInt(1450),
			BillingPeriod: calendar.Monthly,
			NextDueDate:   monthStart,
			Group:         models.GroupBill,
			IsActive:      true,
			IsAutomated:   true,
			Notes:         "Standing order",
		},
		{
			Name:            "Utilities",
			Amount:          decimal.RequireFromString("86.40"),
			BillingPeriod:   calendar.Monthly,
			NextDueDate:     calendar.Clamp(today.Year, today.Month, 20),
			Group:           models.GroupBill,
			IsActive:        true,
			ServiceProvider: "City Power & Water",
		},
		{
			Name:            "Streaming",
			Amount:          decimal.RequireFromString("15.99"),
			BillingPeriod:   calendar.Monthly,
			NextDueDate:     calendar.Clamp(today.Year, today.Month, 12),
			Group:           models.GroupSubscription,
			IsActive:        true,
			IsAutomated:     true,
			ServiceProvider: "Streamly",
		},
		{
			Name:          "Gym",
			Amount:        decimal.RequireFromString("12.50"),
			BillingPeriod: calendar.Weekly,
			NextDueDate:   monthStart.AddDays(2),
			Group:         models.GroupSubscription,
			IsActive:      true,
			IsAutomated:   true,
		},
	}
	for i := range obligations {
		obligations[i].UserID = SampleOwnerID
		// MemoryStore never fails
		_ = s.CreateObligation(ctx, &obligations[i])
	}

	// a hand-entered utilities payment, picked up by name matching
	if !calendar.Clamp(today.Year, today.Month, 5).After(today) {
		s.SeedEntry(models.Transaction{
			UserID: SampleOwnerID,
			Name:   "utilities",
			Amount: decimal.RequireFromString("-86.40"),
			Date:   calendar.Clamp(today.Year, today.Month, 5),
			Source: models.SourceRecurring,
		})
	}
	// the current month already has a user-defined category
	period, _ := s.FindOrCreatePeriod(ctx, SampleOwnerID, today.Year, today.Month)
	groceries := s.SeedCategory(models.BudgetCategory{
		BudgetPeriodID: period.ID,
		Name:           "Groceries",
		BudgetCap:      decimal.NewFromInt(400),
		Color:          "#22c55e",
	})
	s.SeedEntry(models.Transaction{
		UserID:     SampleOwnerID,
		CategoryID: &groceries.ID,
		Name:       "Groceries",
		Amount:     decimal.RequireFromString("-64.12"),
		Date:       monthStart,
		Source:     models.SourceManual,
	})

	return s
}
