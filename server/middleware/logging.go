package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chunkscribe/logger"
)

// RequestLogger logs one line per request once the handler chain is done:
// errors for 5xx, warnings for 4xx. Probe endpoints are not logged.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.WithComponent("http")
	}
	return func(c *gin.Context) {
		if isProbeEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields(
			"method", c.Request.Method,
			logger.FieldPath, c.Request.URL.Path,
			"route", c.FullPath(),
			logger.FieldStatus, status,
			"bytes", c.Writer.Size(),
		)
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		fields = logger.MergeWithDuration(fields, time.Since(start))

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("request completed", fields)
		case status >= 400:
			l.Warn("request completed", fields)
		default:
			l.Info("request completed", fields)
		}
	}
}
