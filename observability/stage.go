package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Stage tracks one pipeline stage of a job as a span plus a duration metric.
type Stage struct {
	Name    string
	JobID   string
	start   time.Time
	span    trace.Span
	metrics *Metrics
	ctx     context.Context
}

// StartStage opens a span named "pipeline.<name>" for jobID. metrics may be
// nil.
func StartStage(ctx context.Context, metrics *Metrics, jobID, name string) (context.Context, *Stage) {
	ctx, span := StartSpan(ctx, SpanStagePrefix+name, trace.WithAttributes(
		attribute.String(AttrJobID, jobID),
		attribute.String(AttrStage, name),
	))
	return ctx, &Stage{
		Name:    name,
		JobID:   jobID,
		start:   time.Now(),
		span:    span,
		metrics: metrics,
		ctx:     ctx,
	}
}

// End closes the stage. A non-nil err marks the span as failed.
func (s *Stage) End(err error) {
	duration := time.Since(s.start)
	status := "ok"
	if err != nil {
		status = "error"
		markFailed(s.span, err)
	}
	s.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	s.span.End()
	s.metrics.RecordStage(s.ctx, s.Name, status, duration)
}

// Duration returns the elapsed time since the stage started.
func (s *Stage) Duration() time.Duration {
	return time.Since(s.start)
}
