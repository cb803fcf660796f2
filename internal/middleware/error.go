package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "budgetry/internal/errors"
	"budgetry/internal/logger"
)

// retryAfterSeconds is advertised when the store is unavailable.
const retryAfterSeconds = "5"

// WriteError writes err as a JSON error body. AppErrors are returned with
// their code and message; anything else is logged and reported as a generic
// internal error so details never leak to clients.
func WriteError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		if appErr.Code == apperrors.ErrPersistence.Code {
			c.Header("Retry-After", retryAfterSeconds)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorHandler returns a Gin middleware that converts the last error set on
// the Gin context into a JSON error response, unless a handler has already
// written one.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}
