package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chunkscribe/version"
)

var started = time.Now()

type infoResponse struct {
	Service string `json:"service"`
	*version.Info
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// Info serves build metadata and process uptime.
func Info(serviceName string) gin.HandlerFunc {
	build := version.GetVersionInfo()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, infoResponse{
			Service:       serviceName,
			Info:          build,
			StartedAt:     started.UTC(),
			UptimeSeconds: int64(time.Since(started).Seconds()),
		})
	}
}
