package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetry/internal/errors"
	"budgetry/internal/recurring"
	"budgetry/internal/services"
)

// SyncHandler lets the scheduled pipeline re-sync owners' current periods.
type SyncHandler struct {
	periodService services.PeriodServicer
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(periodService services.PeriodServicer) *SyncHandler {
	return &SyncHandler{periodService: periodService}
}

// SyncRequest lists the owners to sync.
type SyncRequest struct {
	OwnerIDs []string `json:"owner_ids" binding:"required,min=1,max=500,dive,uuid"`
}

// OwnerSyncResult is the outcome of one owner's sync pass.
type OwnerSyncResult struct {
	OwnerID  string                `json:"owner_id"`
	PeriodID string                `json:"period_id,omitempty"`
	Created  int                   `json:"created"`
	Issues   []recurring.SyncIssue `json:"issues,omitempty"`
	Error    *ErrorDetail          `json:"error,omitempty"`
}

// SyncOwners handles syncing the current period for a batch of owners.
// @Summary     Sync current periods
// @Description Sync recurring categories and record due automated occurrences for each owner (pipeline endpoint). One owner failing does not stop the others.
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-Sync-Key header   string      true "Pipeline API key"
// @Param       request    body     SyncRequest true "Owners to sync"
// @Success     200        {object} map[string][]OwnerSyncResult "Per-owner results"
// @Failure     400        {object} ErrorResponse "Invalid input"
// @Failure     401        {object} ErrorResponse "Invalid API key"
// @Failure     503        {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/sync [post]
func (h *SyncHandler) SyncOwners(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	results := make([]OwnerSyncResult, 0, len(req.OwnerIDs))
	for _, ownerID := range req.OwnerIDs {
		out := OwnerSyncResult{OwnerID: ownerID}
		result, err := h.periodService.SyncCurrentPeriod(c.Request.Context(), ownerID)
		if err != nil {
			detail := ErrorDetail{Code: apperrors.ErrInternalServer.Code, Message: apperrors.ErrInternalServer.Message}
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				detail = ErrorDetail{Code: appErr.Code, Message: appErr.Message}
			}
			out.Error = &detail
		} else {
			out.PeriodID = result.Period.ID
			out.Created = len(result.Created)
			out.Issues = result.Issues
		}
		results = append(results, out)
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
