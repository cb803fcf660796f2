package services

import (
	"context"
	"fmt"
	"strings"

	apperrors "budgetry/internal/errors"
	"budgetry/internal/logger"
	"budgetry/internal/models"
	"budgetry/internal/pagination"
	"budgetry/internal/recurring"
)

// obligationService handles obligation-related business logic.
type obligationService struct {
	engine      *recurring.Engine
	periods     PeriodServicer
	payAheadMax int
}

// NewObligationService creates a new ObligationServicer. Every mutation
// re-syncs the owner's current period through periods.
func NewObligationService(engine *recurring.Engine, periods PeriodServicer, payAheadMax int) ObligationServicer {
	return &obligationService{engine: engine, periods: periods, payAheadMax: payAheadMax}
}

func validateObligation(ob *models.Obligation) error {
	if strings.TrimSpace(ob.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}
	if !ob.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if !ob.BillingPeriod.Valid() {
		return apperrors.ErrInvalidBillingPeriod
	}
	if !ob.Group.Valid() {
		return apperrors.ErrInvalidGroup
	}
	if ob.NextDueDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Next due date is required")
	}
	return nil
}

// CreateObligation creates an obligation. It is active and automated unless
// in says otherwise.
func (s *obligationService) CreateObligation(ctx context.Context, ownerID string, in ObligationInput) (*models.Obligation, error) {
	ob := &models.Obligation{
		UserID:          ownerID,
		Name:            strings.TrimSpace(in.Name),
		Amount:          in.Amount,
		BillingPeriod:   in.BillingPeriod,
		NextDueDate:     in.NextDueDate,
		Group:           in.Group,
		IsActive:        true,
		IsAutomated:     true,
		ServiceProvider: in.ServiceProvider,
		Notes:           in.Notes,
	}
	if in.IsActive != nil {
		ob.IsActive = *in.IsActive
	}
	if in.IsAutomated != nil {
		ob.IsAutomated = *in.IsAutomated
	}
	if err := validateObligation(ob); err != nil {
		return nil, err
	}

	if err := s.engine.Store().CreateObligation(ctx, ob); err != nil {
		return nil, err
	}
	s.resync(ctx, ownerID)
	return ob, nil
}

// GetObligation returns an obligation if it belongs to the owner.
func (s *obligationService) GetObligation(ctx context.Context, ownerID, obligationID string) (*models.Obligation, error) {
	return s.engine.Store().GetObligation(ctx, ownerID, obligationID)
}

// ListObligations returns a paginated, filtered list of the owner's obligations.
func (s *obligationService) ListObligations(ctx context.Context, ownerID string, filter recurring.ObligationFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Obligation], error) {
	return s.engine.Store().ListObligations(ctx, ownerID, filter, page)
}

// UpdateObligation applies the non-nil fields of in.
func (s *obligationService) UpdateObligation(ctx context.Context, ownerID, obligationID string, in ObligationUpdate) (*models.Obligation, error) {
	ob, err := s.GetObligation(ctx, ownerID, obligationID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		ob.Name = strings.TrimSpace(*in.Name)
	}
	if in.Amount != nil {
		ob.Amount = *in.Amount
	}
	if in.BillingPeriod != nil {
		ob.BillingPeriod = *in.BillingPeriod
	}
	if in.NextDueDate != nil {
		ob.NextDueDate = *in.NextDueDate
	}
	if in.Group != nil {
		ob.Group = *in.Group
	}
	if in.IsAutomated != nil {
		ob.IsAutomated = *in.IsAutomated
	}
	if in.ServiceProvider != nil {
		ob.ServiceProvider = *in.ServiceProvider
	}
	if in.Notes != nil {
		ob.Notes = *in.Notes
	}
	if err := validateObligation(ob); err != nil {
		return nil, err
	}

	if err := s.engine.Store().UpdateObligation(ctx, ob); err != nil {
		return nil, err
	}
	s.resync(ctx, ownerID)
	return ob, nil
}

// ToggleObligation activates or pauses an obligation.
func (s *obligationService) ToggleObligation(ctx context.Context, ownerID, obligationID string, active bool) (*models.Obligation, error) {
	ob, err := s.GetObligation(ctx, ownerID, obligationID)
	if err != nil {
		return nil, err
	}
	if ob.IsActive == active {
		return ob, nil
	}

	ob.IsActive = active
	if err := s.engine.Store().UpdateObligation(ctx, ob); err != nil {
		return nil, err
	}
	s.resync(ctx, ownerID)
	return ob, nil
}

// DeleteObligation removes an obligation. Its recorded entries stay in the
// ledger, unlinked.
func (s *obligationService) DeleteObligation(ctx context.Context, ownerID, obligationID string) error {
	ob, err := s.GetObligation(ctx, ownerID, obligationID)
	if err != nil {
		return err
	}
	if err := s.engine.DeleteObligation(ctx, ob); err != nil {
		return err
	}
	s.resync(ctx, ownerID)
	return nil
}

// PayFutureOccurrences records count upcoming occurrences as paid.
func (s *obligationService) PayFutureOccurrences(ctx context.Context, ownerID, obligationID string, count int) (*recurring.PayResult, error) {
	if count < 1 || (s.payAheadMax > 0 && count > s.payAheadMax) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPayCount,
			fmt.Sprintf("Count must be between 1 and %d", s.payAheadMax))
	}

	ob, err := s.GetObligation(ctx, ownerID, obligationID)
	if err != nil {
		return nil, err
	}
	result, err := s.engine.PayFuture(ctx, ob, count)
	if err != nil {
		return nil, err
	}
	s.resync(ctx, ownerID)
	return result, nil
}

// resync runs a sync pass for the current period. Its failures are logged
// and never fail the mutation that triggered it.
func (s *obligationService) resync(ctx context.Context, ownerID string) {
	if s.periods == nil {
		return
	}
	result, err := s.periods.SyncCurrentPeriod(ctx, ownerID)
	if err != nil {
		logger.Get().Warnw("post-mutation sync failed", "owner_id", ownerID, "error", err)
		return
	}
	if len(result.Issues) > 0 {
		logger.Get().Warnw("post-mutation sync completed with issues",
			"owner_id", ownerID, "issues", len(result.Issues))
	}
}
