// Package observability wires OpenTelemetry tracing and metrics for the
// transcription service.
//
// Export only happens when an OTLP endpoint is configured; otherwise the
// global no-op providers stay in place and every helper here is still safe
// to call.
//
//	prov, err := observability.Setup(ctx, "chunkscribe", version, cfg)
//	defer prov.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("chunkscribe"))
//	ctx, stage := observability.StartStage(ctx, metrics, jobID, "chunking")
//	defer stage.End(err)
package observability
