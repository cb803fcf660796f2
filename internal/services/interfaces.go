package services

import (
	"context"

	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
	"budgetry/internal/models"
	"budgetry/internal/pagination"
	"budgetry/internal/recurring"
)

// GroupTotals is the obligation total per group for a period's window.
type GroupTotals struct {
	Bills         decimal.Decimal `json:"bills"`
	Subscriptions decimal.Decimal `json:"subscriptions"`
}

// PeriodView is a synced budget period with every obligation annotated.
type PeriodView struct {
	Period      *models.BudgetPeriod            `json:"period"`
	Window      calendar.Window                 `json:"window"`
	Today       calendar.Date                   `json:"today"`
	Categories  []models.BudgetCategory         `json:"categories"`
	Entries     []models.Transaction            `json:"entries"`
	Obligations []recurring.AnnotatedObligation `json:"obligations"`
	Totals      GroupTotals                     `json:"totals"`
	Issues      []recurring.SyncIssue           `json:"issues"`
}

// PeriodServicer defines the contract for opening and syncing budget periods.
type PeriodServicer interface {
	OpenPeriod(ctx context.Context, ownerID string, year, month int) (*PeriodView, error)
	SyncCurrentPeriod(ctx context.Context, ownerID string) (*recurring.SyncResult, error)
}

// ObligationInput holds the fields of a new obligation.
type ObligationInput struct {
	Name            string
	Amount          decimal.Decimal
	BillingPeriod   calendar.BillingPeriod
	NextDueDate     calendar.Date
	Group           models.ObligationGroup
	IsActive        *bool
	IsAutomated     *bool
	ServiceProvider string
	Notes           string
}

// ObligationUpdate holds optional obligation changes. Nil fields are left
// unchanged.
type ObligationUpdate struct {
	Name            *string
	Amount          *decimal.Decimal
	BillingPeriod   *calendar.BillingPeriod
	NextDueDate     *calendar.Date
	Group           *models.ObligationGroup
	IsAutomated     *bool
	ServiceProvider *string
	Notes           *string
}

// ObligationServicer defines the contract for obligation-related business logic.
type ObligationServicer interface {
	CreateObligation(ctx context.Context, ownerID string, in ObligationInput) (*models.Obligation, error)
	GetObligation(ctx context.Context, ownerID, obligationID string) (*models.Obligation, error)
	ListObligations(ctx context.Context, ownerID string, filter recurring.ObligationFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Obligation], error)
	UpdateObligation(ctx context.Context, ownerID, obligationID string, in ObligationUpdate) (*models.Obligation, error)
	ToggleObligation(ctx context.Context, ownerID, obligationID string, active bool) (*models.Obligation, error)
	DeleteObligation(ctx context.Context, ownerID, obligationID string) error
	PayFutureOccurrences(ctx context.Context, ownerID, obligationID string, count int) (*recurring.PayResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
