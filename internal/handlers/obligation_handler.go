package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetry/internal/calendar"
	apperrors "budgetry/internal/errors"
	"budgetry/internal/models"
	"budgetry/internal/pagination"
	"budgetry/internal/recurring"
	"budgetry/internal/services"
)

// ObligationHandler handles obligation-related requests.
type ObligationHandler struct {
	obligationService services.ObligationServicer
	auditService      services.AuditServicer
}

// NewObligationHandler creates a new ObligationHandler.
func NewObligationHandler(obligationService services.ObligationServicer, auditService services.AuditServicer) *ObligationHandler {
	return &ObligationHandler{obligationService: obligationService, auditService: auditService}
}

// CreateObligationRequest represents the request payload for creating an obligation.
type CreateObligationRequest struct {
	Name            string      `json:"name" binding:"required,min=1,max=100"`
	Amount          json.Number `json:"amount" binding:"required,positive_decimal" swaggertype:"string" example:"15.99"`
	BillingPeriod   string      `json:"billing_period" binding:"required,billing_period" example:"monthly"`
	NextDueDate     string      `json:"next_due_date" binding:"required,datetime=2006-01-02" example:"2024-03-20"`
	Group           string      `json:"group" binding:"required,obligation_group" example:"subscription"`
	IsActive        *bool       `json:"is_active"`
	IsAutomated     *bool       `json:"is_automated"`
	ServiceProvider string      `json:"service_provider" binding:"max=100"`
	Notes           string      `json:"notes" binding:"max=500"`
}

// UpdateObligationRequest represents the request payload for updating an obligation.
type UpdateObligationRequest struct {
	Name            *string      `json:"name" binding:"omitempty,min=1,max=100"`
	Amount          *json.Number `json:"amount" binding:"omitempty,positive_decimal" swaggertype:"string"`
	BillingPeriod   *string      `json:"billing_period" binding:"omitempty,billing_period"`
	NextDueDate     *string      `json:"next_due_date" binding:"omitempty,datetime=2006-01-02"`
	Group           *string      `json:"group" binding:"omitempty,obligation_group"`
	IsAutomated     *bool        `json:"is_automated"`
	ServiceProvider *string      `json:"service_provider" binding:"omitempty,max=100"`
	Notes           *string      `json:"notes" binding:"omitempty,max=500"`
}

// SetActiveRequest pauses or resumes an obligation.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// PayRequest records upcoming occurrences as paid.
type PayRequest struct {
	Count *int `json:"count" binding:"required" example:"3"`
}

func parseAmount(n json.Number) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil || !d.IsPositive() {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}
	return d, nil
}

func parseDueDate(s string) (calendar.Date, error) {
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "next_due_date must be YYYY-MM-DD")
	}
	return d, nil
}

// CreateObligation handles the creation of a new obligation.
// @Summary     Create an obligation
// @Description Create a recurring bill or subscription
// @Tags        obligations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateObligationRequest true "Obligation details"
// @Success     201 {object} models.Obligation "Obligation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /obligations [post]
func (h *ObligationHandler) CreateObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	due, err := parseDueDate(req.NextDueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ob, err := h.obligationService.CreateObligation(c.Request.Context(), userID, services.ObligationInput{
		Name:            req.Name,
		Amount:          amount,
		BillingPeriod:   calendar.BillingPeriod(req.BillingPeriod),
		NextDueDate:     due,
		Group:           models.ObligationGroup(req.Group),
		IsActive:        req.IsActive,
		IsAutomated:     req.IsAutomated,
		ServiceProvider: req.ServiceProvider,
		Notes:           req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_OBLIGATION", "obligation", ob.ID, c.ClientIP(),
		map[string]interface{}{"name": ob.Name, "amount": ob.Amount.String(), "billing_period": ob.BillingPeriod})

	c.JSON(http.StatusCreated, gin.H{"obligation": ob})
}

// GetObligations handles listing obligations for the authenticated user.
// @Summary     List obligations
// @Description Get a paginated list of obligations ordered by name
// @Tags        obligations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       group     query string false "Filter by group (bill/subscription)"
// @Param       is_active query bool   false "Filter by active status"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Obligation] "Paginated obligations"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /obligations [get]
func (h *ObligationHandler) GetObligations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter recurring.ObligationFilter
	if filter.IsActive, err = parseBoolQuery(c, "is_active"); err != nil {
		respondWithError(c, err)
		return
	}
	if v := c.Query("group"); v != "" {
		g := models.ObligationGroup(v)
		if !g.Valid() {
			respondWithError(c, apperrors.ErrInvalidGroup)
			return
		}
		filter.Group = &g
	}

	result, err := h.obligationService.ListObligations(c.Request.Context(), userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetObligation handles retrieving a specific obligation.
// @Summary     Get obligation by ID
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Obligation ID"
// @Success     200 {object} models.Obligation "Obligation details"
// @Failure     400 {object} ErrorResponse "Invalid obligation ID"
// @Failure     404 {object} ErrorResponse "Obligation not found"
// @Router      /obligations/{id} [get]
func (h *ObligationHandler) GetObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	ob, err := h.obligationService.GetObligation(c.Request.Context(), userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"obligation": ob})
}

// UpdateObligation handles partial updates of an obligation.
// @Summary     Update an obligation
// @Description Update the provided fields of an obligation. Moving next_due_date does not rewrite recorded entries.
// @Tags        obligations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Obligation ID"
// @Param       request body UpdateObligationRequest true "Fields to change"
// @Success     200 {object} models.Obligation "Obligation updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Obligation not found"
// @Router      /obligations/{id} [put]
func (h *ObligationHandler) UpdateObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	in := services.ObligationUpdate{
		Name:            req.Name,
		IsAutomated:     req.IsAutomated,
		ServiceProvider: req.ServiceProvider,
		Notes:           req.Notes,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			respondWithError(c, err)
			return
		}
		in.Amount = &amount
	}
	if req.NextDueDate != nil {
		due, err := parseDueDate(*req.NextDueDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		in.NextDueDate = &due
	}
	if req.BillingPeriod != nil {
		p := calendar.BillingPeriod(*req.BillingPeriod)
		in.BillingPeriod = &p
	}
	if req.Group != nil {
		g := models.ObligationGroup(*req.Group)
		in.Group = &g
	}

	ob, err := h.obligationService.UpdateObligation(c.Request.Context(), userID, id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_OBLIGATION", "obligation", ob.ID, c.ClientIP(),
		map[string]interface{}{"name": ob.Name, "amount": ob.Amount.String(), "next_due_date": ob.NextDueDate.String()})

	c.JSON(http.StatusOK, gin.H{"obligation": ob})
}

// SetObligationActive handles pausing and resuming an obligation.
// @Summary     Pause or resume an obligation
// @Tags        obligations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Obligation ID"
// @Param       request body SetActiveRequest true "Desired state"
// @Success     200 {object} models.Obligation "Obligation updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Obligation not found"
// @Router      /obligations/{id}/active [patch]
func (h *ObligationHandler) SetObligationActive(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ob, err := h.obligationService.ToggleObligation(c.Request.Context(), userID, id, *req.Active)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "TOGGLE_OBLIGATION", "obligation", ob.ID, c.ClientIP(),
		map[string]interface{}{"is_active": ob.IsActive})

	c.JSON(http.StatusOK, gin.H{"obligation": ob})
}

// DeleteObligation handles deleting an obligation.
// @Summary     Delete an obligation
// @Description Delete an obligation. Entries already recorded for it stay in the ledger, unlinked.
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Obligation ID"
// @Success     200 {object} MessageResponse "Obligation deleted"
// @Failure     400 {object} ErrorResponse "Invalid obligation ID"
// @Failure     404 {object} ErrorResponse "Obligation not found"
// @Router      /obligations/{id} [delete]
func (h *ObligationHandler) DeleteObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.obligationService.DeleteObligation(c.Request.Context(), userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_OBLIGATION", "obligation", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Obligation deleted successfully"})
}

// PayObligation handles paying upcoming occurrences ahead of time.
// @Summary     Pay ahead
// @Description Record the next count occurrences as paid and move next_due_date past them
// @Tags        obligations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string     true "Obligation ID"
// @Param       request body PayRequest true "Number of occurrences"
// @Success     200 {object} recurring.PayResult "Recorded entries"
// @Failure     400 {object} ErrorResponse "Invalid count"
// @Failure     404 {object} ErrorResponse "Obligation not found"
// @Failure     409 {object} ErrorResponse "Obligation is paused"
// @Router      /obligations/{id}/pay [post]
func (h *ObligationHandler) PayObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.obligationService.PayFutureOccurrences(c.Request.Context(), userID, id, *req.Count)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PAY_OBLIGATION", "obligation", id, c.ClientIP(),
		map[string]interface{}{"count": *req.Count, "new_next_due_date": result.NewNextDueDate.String()})

	c.JSON(http.StatusOK, gin.H{"payment": result})
}
