package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationMiddleware reuses the caller's X-Correlation-ID or generates
// one, echoes it on the response and attaches a request logger carrying it.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set("correlation_id", correlationID)
		c.Set("logger", slog.Default().With("correlation_id", correlationID))
		c.Header("X-Correlation-ID", correlationID)

		c.Next()
	}
}

// Logger returns the request logger, or slog.Default outside a request
// that went through CorrelationMiddleware.
func Logger(c *gin.Context) *slog.Logger {
	if v, ok := c.Get("logger"); ok {
		if logger, ok := v.(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}
