package api

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/kbukum/chunkscribe/observability"
	"github.com/kbukum/chunkscribe/provider"
	"github.com/kbukum/chunkscribe/server/endpoint"
)

// GateState is the admission gate as seen by health checks.
type GateState interface {
	Name() string
	InUse() int
	Waiting() int
	MaxConcurrent() int
}

// EngineHealth reports per-engine health.
type EngineHealth interface {
	Health(ctx context.Context) map[string]provider.HealthStatus
}

// HealthChecker reports the gate and every initialized engine. A saturated
// gate with waiters is degraded; an unreachable engine is down.
func HealthChecker(gate GateState, engines EngineHealth) endpoint.HealthChecker {
	return func(ctx context.Context) []observability.Health {
		var out []observability.Health
		if gate != nil {
			out = append(out, gateHealth(gate))
		}
		if engines != nil {
			out = append(out, engineHealth(ctx, engines)...)
		}
		return out
	}
}

func gateHealth(g GateState) observability.Health {
	h := observability.Health{
		Name:   "gate:" + g.Name(),
		Status: observability.HealthStatusUp,
		Details: map[string]string{
			"in_use":         strconv.Itoa(g.InUse()),
			"waiting":        strconv.Itoa(g.Waiting()),
			"max_concurrent": strconv.Itoa(g.MaxConcurrent()),
		},
	}
	if g.InUse() >= g.MaxConcurrent() && g.Waiting() > 0 {
		h.Status = observability.HealthStatusDegraded
		h.Message = fmt.Sprintf("%d jobs waiting for admission", g.Waiting())
	}
	return h
}

func engineHealth(ctx context.Context, engines EngineHealth) []observability.Health {
	statuses := engines.Health(ctx)
	if len(statuses) == 0 {
		return []observability.Health{{
			Name:    "engines",
			Status:  observability.HealthStatusDown,
			Message: "no speech engine configured",
		}}
	}

	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]observability.Health, 0, len(names))
	for _, name := range names {
		hs := statuses[name]
		h := observability.Health{Name: "engine:" + name, Message: hs.Message}
		switch hs.Status {
		case provider.StatusHealthy:
			h.Status = observability.HealthStatusUp
		case provider.StatusDegraded:
			h.Status = observability.HealthStatusDegraded
		default:
			h.Status = observability.HealthStatusDown
		}
		if len(hs.Details) > 0 {
			h.Details = make(map[string]string, len(hs.Details))
			for k, v := range hs.Details {
				h.Details[k] = fmt.Sprint(v)
			}
		}
		out = append(out, h)
	}
	return out
}
