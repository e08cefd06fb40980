package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// GateState is the read side of an admission gate.
type GateState interface {
	Name() string
	InUse() int
	Waiting() int
}

// Metrics holds the service's metric instruments. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	meter           metric.Meter
	jobsTotal       metric.Int64Counter
	jobDuration     metric.Float64Histogram
	stageDuration   metric.Float64Histogram
	chunksTotal     metric.Int64Counter
	gateWait        metric.Float64Histogram
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	var err error

	if m.jobsTotal, err = meter.Int64Counter("jobs.total",
		metric.WithDescription("Finished jobs by status"),
	); err != nil {
		return nil, fmt.Errorf("creating jobs.total counter: %w", err)
	}
	if m.jobDuration, err = meter.Float64Histogram("job.duration",
		metric.WithDescription("Job duration from admission to teardown"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating job.duration histogram: %w", err)
	}
	if m.stageDuration, err = meter.Float64Histogram("stage.duration",
		metric.WithDescription("Duration of pipeline stages"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating stage.duration histogram: %w", err)
	}
	if m.chunksTotal, err = meter.Int64Counter("chunks.total",
		metric.WithDescription("Dispatched chunks by outcome"),
	); err != nil {
		return nil, fmt.Errorf("creating chunks.total counter: %w", err)
	}
	if m.gateWait, err = meter.Float64Histogram("gate.wait",
		metric.WithDescription("Time spent waiting for admission"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating gate.wait histogram: %w", err)
	}
	if m.requestTotal, err = meter.Int64Counter("request.total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("creating request.total counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("request.duration",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating request.duration histogram: %w", err)
	}
	if m.requestActive, err = meter.Int64UpDownCounter("request.active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("creating request.active gauge: %w", err)
	}
	return m, nil
}

// RegisterGate reports the gate's in-use and waiting counts as gauges.
func (m *Metrics) RegisterGate(g GateState) error {
	if m == nil {
		return nil
	}
	inUse, err := m.meter.Int64ObservableGauge("gate.in_use",
		metric.WithDescription("Jobs currently holding an admission slot"))
	if err != nil {
		return fmt.Errorf("creating gate.in_use gauge: %w", err)
	}
	waiting, err := m.meter.Int64ObservableGauge("gate.waiting",
		metric.WithDescription("Jobs waiting for an admission slot"))
	if err != nil {
		return fmt.Errorf("creating gate.waiting gauge: %w", err)
	}
	attrs := metric.WithAttributes(attribute.String("gate", g.Name()))
	_, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(inUse, int64(g.InUse()), attrs)
		o.ObserveInt64(waiting, int64(g.Waiting()), attrs)
		return nil
	}, inUse, waiting)
	return err
}

// RecordGateWait records time spent waiting at the gate.
func (m *Metrics) RecordGateWait(ctx context.Context, gate string, waited time.Duration) {
	if m == nil {
		return
	}
	m.gateWait.Record(ctx, waited.Seconds(), metric.WithAttributes(attribute.String("gate", gate)))
}

// RecordJob records a finished job.
func (m *Metrics) RecordJob(ctx context.Context, status, language, mode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("language", language),
		attribute.String("mode", mode),
	))
	m.jobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// RecordStage records one pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

// RecordChunk records one chunk outcome.
func (m *Metrics) RecordChunk(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.chunksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRequestStart increments the active request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements active requests and records the completed request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
