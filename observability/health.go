package observability

// HealthStatus is the state of a component or of the whole service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

var healthRank = map[HealthStatus]int{HealthStatusUp: 0, HealthStatusDegraded: 1, HealthStatusDown: 2}

// Health is one component's report, e.g. the gate or a speech engine.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth aggregates component reports. Its status is the worst
// status of any component.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// NewServiceHealth starts an aggregate that is up until a component says
// otherwise.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Version: version, Status: HealthStatusUp}
}

// AddComponent records h and lowers the aggregate status if needed.
// Unknown statuses count as down.
func (sh *ServiceHealth) AddComponent(h Health) {
	sh.Components = append(sh.Components, h)
	status := h.Status
	if _, ok := healthRank[status]; !ok {
		status = HealthStatusDown
	}
	if healthRank[status] > healthRank[sh.Status] {
		sh.Status = status
	}
}
