package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "budgetry/internal/errors"
	"budgetry/internal/middleware"
	"budgetry/internal/uuid"
)

// getUserID extracts the authenticated owner ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter in its canonical lower-case form.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseBoolQuery parses an optional true/false query parameter.
func parseBoolQuery(c *gin.Context, key string) (*bool, error) {
	switch c.Query(key) {
	case "":
		return nil, nil
	case "true":
		b := true
		return &b, nil
	case "false":
		b := false
		return &b, nil
	}
	return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+" must be 'true' or 'false'")
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}
