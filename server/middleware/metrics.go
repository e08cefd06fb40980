package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chunkscribe/observability"
)

// Metrics returns a Gin middleware recording request count, duration and
// in-flight requests. It runs inside Gin so the route template, not the raw
// path, labels the series.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequestStart(ctx)
		start := time.Now()
		c.Next()
		m.RecordRequestEnd(ctx, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
