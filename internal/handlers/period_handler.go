package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "budgetry/internal/errors"
	"budgetry/internal/services"
)

// PeriodHandler serves synced budget periods.
type PeriodHandler struct {
	periodService services.PeriodServicer
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodService services.PeriodServicer) *PeriodHandler {
	return &PeriodHandler{periodService: periodService}
}

// GetPeriod opens a budget period, syncing its recurring categories and
// entries first.
// @Summary     Get a budget period
// @Description Open the budget period for a month. Bills and Subscriptions categories are kept in sync with active obligations and due automated occurrences are recorded before the view is returned.
// @Tags        periods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year, e.g. 2024"
// @Param       month path int true "Month, 1 to 12"
// @Success     200 {object} services.PeriodView "Synced period"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /periods/{year}/{month} [get]
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidPeriod, "Invalid year"))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidPeriod, "Invalid month"))
		return
	}

	view, err := h.periodService.OpenPeriod(c.Request.Context(), userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": view})
}
