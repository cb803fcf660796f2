package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "budgetry/internal/errors"
	"budgetry/internal/logger"
)

const (
	// SyncKeyHeader carries the shared key of the scheduled sync job.
	SyncKeyHeader = "X-Sync-Key"
	// SyncCallerKey is set on the context once the sync key checks out.
	SyncCallerKey = "syncCaller"
)

// PipelineAuthMiddleware guards the scheduled sync endpoints. An empty
// apiKey disables them.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			WriteError(c, apperrors.ErrSyncNotConfigured)
			c.Abort()
			return
		}
		key := c.GetHeader(SyncKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			logger.Get().Warnw("rejected sync call", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
			WriteError(c, apperrors.ErrInvalidSyncKey)
			c.Abort()
			return
		}
		c.Set(SyncCallerKey, true)
		c.Next()
	}
}
