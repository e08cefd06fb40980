package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chunkscribe/observability"
	"github.com/kbukum/chunkscribe/version"
)

// HealthChecker reports the state of the service's collaborators: the
// concurrency gate and each transcription engine.
type HealthChecker func(ctx context.Context) []observability.Health

type healthResponse struct {
	Status     observability.HealthStatus `json:"status"`
	Service    string                     `json:"service"`
	Version    string                     `json:"version"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components []observability.Health     `json:"components"`
}

type readinessResponse struct {
	Status   string   `json:"status"`
	Blocking []string `json:"blocking,omitempty"`
}

// Report runs checker and folds its results into a ServiceHealth.
func Report(ctx context.Context, serviceName string, checker HealthChecker) *observability.ServiceHealth {
	sh := observability.NewServiceHealth(serviceName, version.GetVersionInfo().Version)
	if checker != nil {
		for _, h := range checker(ctx) {
			sh.AddComponent(h)
		}
	}
	return sh
}

// Health serves the folded component report; 503 once anything is down.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := Report(c.Request.Context(), serviceName, checker)
		code := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			code = http.StatusServiceUnavailable
		}
		components := sh.Components
		if components == nil {
			components = []observability.Health{}
		}
		c.JSON(code, healthResponse{
			Status:     sh.Status,
			Service:    sh.Service,
			Version:    sh.Version,
			Timestamp:  time.Now().UTC(),
			Components: components,
		})
	}
}

// Readiness tells the load balancer whether to send uploads here. A
// degraded engine still takes traffic; a down one does not.
func Readiness(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := readinessResponse{Status: "ready"}
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				if h.Status == observability.HealthStatusDown {
					resp.Blocking = append(resp.Blocking, h.Name)
				}
			}
		}
		if len(resp.Blocking) > 0 {
			resp.Status = "not_ready"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Liveness only proves the process still answers HTTP.
func Liveness() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"live": true})
	}
}
