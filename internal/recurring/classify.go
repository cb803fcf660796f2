package recurring

import (
	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
	"budgetry/internal/models"
)

// Status is the payment state of an obligation within a month.
type Status string

const (
	StatusPaid     Status = "paid"
	StatusPartial  Status = "partial"
	StatusOverdue  Status = "overdue"
	StatusDueToday Status = "due_today"
	StatusUpcoming Status = "upcoming"
)

// Classification summarises what has been paid against an obligation and
// what is still due up to the end of the window.
type Classification struct {
	Status           Status          `json:"status"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	PaidCount        int             `json:"paid_count"`
	PaidDates        []calendar.Date `json:"paid_dates"`
	FutureCount      int             `json:"future_count"`
	OccurrencesCount int             `json:"occurrences_count"`
	DisplayDueDate   calendar.Date   `json:"display_due_date"`
	MatchTier        MatchTier       `json:"match_tier,omitempty"`
	MatchedEntryIDs  []string        `json:"matched_entry_ids"`
}

// Classify derives the status of ob from the entries matched to it.
func Classify(ob *models.Obligation, matched []models.Transaction, today, windowEnd calendar.Date) Classification {
	c := Classification{
		PaidAmount:      decimal.Zero,
		PaidDates:       []calendar.Date{},
		MatchedEntryIDs: []string{},
	}

	paid := make(map[calendar.Date]bool, len(matched))
	for _, e := range matched {
		c.PaidAmount = c.PaidAmount.Add(e.Amount.Abs())
		c.PaidCount++
		c.MatchedEntryIDs = append(c.MatchedEntryIDs, e.ID)
		if !paid[e.Date] {
			paid[e.Date] = true
			c.PaidDates = append(c.PaidDates, e.Date)
		}
	}

	if ob.BillingPeriod.Valid() {
		for cur := ob.NextDueDate; !cur.After(windowEnd); cur = ob.BillingPeriod.Step(cur) {
			if !paid[cur] {
				c.FutureCount++
			}
		}
	}
	c.OccurrencesCount = c.PaidCount + c.FutureCount

	switch {
	case c.PaidAmount.GreaterThanOrEqual(ob.Amount) && c.FutureCount == 0:
		c.Status = StatusPaid
	case c.PaidAmount.IsPositive():
		c.Status = StatusPartial
	case today.After(ob.NextDueDate):
		c.Status = StatusOverdue
	case today.Equal(ob.NextDueDate):
		c.Status = StatusDueToday
	default:
		c.Status = StatusUpcoming
	}

	c.DisplayDueDate = ob.NextDueDate
	if paid[ob.NextDueDate] && ob.BillingPeriod.Valid() {
		c.DisplayDueDate = ob.BillingPeriod.Step(ob.NextDueDate)
	}
	return c
}
