package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// StructuredLogging logs every request through slog.Default.
func StructuredLogging() gin.HandlerFunc {
	return LoggingMiddleware(slog.Default(), "missionary-import")
}

// LoggingMiddleware writes one line per request. Bulk imports also carry the
// import batch id and whether the response was an idempotent replay, read
// back from the response headers the bulk handler sets.
func LoggingMiddleware(logger *slog.Logger, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		outcome, level := classify(status)
		attrs := []slog.Attr{
			slog.String("service", serviceName),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status_code", status),
			slog.Int("response_bytes", c.Writer.Size()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("outcome", outcome),
		}

		// Auth runs later in the chain, so its keys are only set after Next.
		for _, key := range []string{"correlation_id", "user_id", "role"} {
			if v, ok := c.Get(key); ok {
				attrs = append(attrs, slog.Any(key, v))
			}
		}
		if batchID := c.Writer.Header().Get("X-Import-Batch-ID"); batchID != "" {
			attrs = append(attrs, slog.String("batch_id", batchID))
			attrs = append(attrs, slog.Bool("replayed", c.Writer.Header().Get("Idempotent-Replayed") == "true"))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		logger.LogAttrs(c.Request.Context(), level, "request processed", attrs...)
	}
}

func classify(status int) (string, slog.Level) {
	switch {
	case status >= 500:
		return "server_error", slog.LevelError
	case status >= 400:
		return "client_error", slog.LevelWarn
	case status >= 200 && status < 300:
		return "success", slog.LevelInfo
	default:
		return "unknown", slog.LevelInfo
	}
}
