package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"budgetry/internal/logger"
	"budgetry/internal/metrics"
	"budgetry/internal/uuid"
)

const requestIDKey = "requestID"

// RequestLogging returns a Gin middleware that logs each request with a unique
// request ID, route, status code, latency, and the authenticated owner using
// Zap. When m is non-nil the request is also counted in Prometheus.
func RequestLogging(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if m != nil {
			m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), latency)
		}

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if ownerID := c.GetString(UserIDKey); ownerID != "" {
			fields = append(fields, "owner_id", ownerID)
		}

		log := logger.Get()
		if c.Writer.Status() >= 500 {
			log.Warnw("request", fields...)
			return
		}
		log.Infow("request", fields...)
	}
}
