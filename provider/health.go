package provider

import "context"

// Status is a provider's coarse health.
type Status string

const (
	StatusHealthy     Status = "healthy"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
)

// HealthStatus is what a provider reports about itself. Details carry
// provider-specific state such as the circuit or the loaded model.
type HealthStatus struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthChecker is implemented by providers that know more than
// IsAvailable tells.
type HealthChecker interface {
	Health(ctx context.Context) HealthStatus
}

// Check asks p for its health, falling back to IsAvailable.
func Check(ctx context.Context, p Provider) HealthStatus {
	if hc, ok := p.(HealthChecker); ok {
		return hc.Health(ctx)
	}
	if !p.IsAvailable(ctx) {
		return HealthStatus{Status: StatusUnavailable, Message: "provider reported unavailable"}
	}
	return HealthStatus{Status: StatusHealthy}
}
