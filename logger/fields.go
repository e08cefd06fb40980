package logger

import "time"

// Field keys shared across packages.
const (
	FieldComponent  = "component"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
	FieldRequestID  = "request_id"
	FieldJobID      = "job_id"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldChunkIndex = "chunk_index"
	FieldChunkPath  = "chunk_path"
	FieldLanguage   = "language"
	FieldMode       = "mode"
	FieldEngine     = "engine"
	FieldPath       = "path"
	FieldSize       = "size"
)

// Fields builds a field map from alternating keys and values. Non-string
// keys and a trailing odd value are dropped.
//
//	log.Info("chunk exported", logger.Fields(logger.FieldPath, p, "bytes", n))
func Fields(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			m[k] = kv[i+1]
		}
	}
	return m
}

// ChunkFields identifies a chunk inside a job.
func ChunkFields(index int, path string) map[string]any {
	return map[string]any{FieldChunkIndex: index, FieldChunkPath: path}
}

// MergeWithError adds err to fields, allocating when fields is nil.
func MergeWithError(fields map[string]any, err error) map[string]any {
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields[FieldError] = err.Error()
	return fields
}

// MergeWithDuration adds d in milliseconds to fields.
func MergeWithDuration(fields map[string]any, d time.Duration) map[string]any {
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
