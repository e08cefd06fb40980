package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/chunkscribe/errors"
)

const tracerName = "github.com/kbukum/chunkscribe"

// Span names.
const (
	SpanJob         = "pipeline.job"
	SpanStagePrefix = "pipeline."
)

// Attribute keys.
const (
	AttrJobID        = "job.id"
	AttrStage        = "job.stage"
	AttrLanguage     = "job.language"
	AttrMode         = "job.mode"
	AttrEngine       = "job.engine"
	AttrChunkCount   = "chunk.count"
	AttrDurationMs   = "duration_ms"
	AttrStatus       = "status"
	AttrErrorCode    = "error.code"
	AttrErrorMessage = "error.message"
)

// StartSpan starts a span on the service tracer of the global provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// SetSpanError marks the span in ctx failed and tags it with err's code.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}
	markFailed(span, err)
}

func markFailed(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	if code := apperrors.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
	}
}
