package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BebaneMarina/taxe-municipale/internal/logger"
)

// loggerKey is the gin context key holding the per-request logger.
const loggerKey = "logger"

// Logger attaches a request-scoped logger to the context and emits one
// structured line per request. Server errors log at error level, client
// errors at warn, everything else at info.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(loggerKey, requestLogger)

		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if c.Request.URL.RawQuery != "" {
			fields["query"] = c.Request.URL.RawQuery
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			requestLogger.Error("Request completed with server error", nil, fields)
		case status >= 400:
			requestLogger.Warn("Request completed with client error", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// GetLogger returns the request-scoped logger, or nil when the Logger
// middleware did not run.
func GetLogger(c *gin.Context) *logger.Logger {
	if value, ok := c.Get(loggerKey); ok {
		if log, ok := value.(*logger.Logger); ok {
			return log
		}
	}
	return nil
}
