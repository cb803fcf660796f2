// Package errors provides custom error types for the budgetry API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}

	ErrSyncNotConfigured = &AppError{Code: "SYNC_NOT_CONFIGURED", Message: "Scheduled sync is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrInvalidSyncKey    = &AppError{Code: "INVALID_SYNC_KEY", Message: "Invalid or missing sync key", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrPersistence    = &AppError{Code: "PERSISTENCE_ERROR", Message: "Storage operation failed", StatusCode: http.StatusServiceUnavailable}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Obligation errors.
var (
	ErrObligationNotFound   = &AppError{Code: "OBLIGATION_NOT_FOUND", Message: "Obligation not found", StatusCode: http.StatusNotFound}
	ErrInvalidBillingPeriod = &AppError{Code: "INVALID_BILLING_PERIOD", Message: "Unsupported billing period", StatusCode: http.StatusBadRequest}
	ErrInvalidGroup         = &AppError{Code: "INVALID_GROUP", Message: "Obligation group must be bill or subscription", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount        = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be a positive decimal", StatusCode: http.StatusBadRequest}
	ErrInvalidPayCount      = &AppError{Code: "INVALID_PAY_COUNT", Message: "Count must be at least 1", StatusCode: http.StatusBadRequest}
	ErrObligationInactive   = &AppError{Code: "OBLIGATION_INACTIVE", Message: "Obligation is not active", StatusCode: http.StatusConflict}
)

// Budget errors.
var (
	ErrBudgetPeriodNotFound = &AppError{Code: "BUDGET_PERIOD_NOT_FOUND", Message: "Budget period not found", StatusCode: http.StatusNotFound}
	ErrInvalidPeriod        = &AppError{Code: "INVALID_PERIOD", Message: "Year or month out of range", StatusCode: http.StatusBadRequest}
	ErrCategoryNotFound     = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
)

// Is reports whether err carries the same code as sentinel.
func Is(err error, sentinel *AppError) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == sentinel.Code
}
