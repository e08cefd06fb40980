package errors

import "net/http"

// ErrorCode is the machine-readable code clients switch on.
type ErrorCode string

// Remote collaborators.
const (
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout          ErrorCode = "TIMEOUT"
	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Request input.
const (
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrCodeUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeConflict         ErrorCode = "CONFLICT"
)

// Pipeline failures. CHUNK_EXPORT_FAILED and ENGINE_CALL_FAILED only ever
// become gaps; the others end the job.
const (
	ErrCodeDecodeFailed      ErrorCode = "DECODE_FAILED"
	ErrCodeChunkExportFailed ErrorCode = "CHUNK_EXPORT_FAILED"
	ErrCodeEngineCallFailed  ErrorCode = "ENGINE_CALL_FAILED"
	ErrCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrCodeResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

type codeSpec struct {
	status    int
	retryable bool
}

var codes = map[ErrorCode]codeSpec{
	ErrCodeConnectionFailed:  {http.StatusServiceUnavailable, true},
	ErrCodeTimeout:           {http.StatusGatewayTimeout, true},
	ErrCodeExternalService:   {http.StatusBadGateway, true},
	ErrCodeInvalidInput:      {http.StatusBadRequest, false},
	ErrCodeMissingField:      {http.StatusBadRequest, false},
	ErrCodeUnsupportedMedia:  {http.StatusUnsupportedMediaType, false},
	ErrCodeNotFound:          {http.StatusNotFound, false},
	ErrCodeConflict:          {http.StatusConflict, false},
	ErrCodeDecodeFailed:      {http.StatusUnprocessableEntity, false},
	ErrCodeChunkExportFailed: {http.StatusInternalServerError, false},
	ErrCodeEngineCallFailed:  {http.StatusBadGateway, false},
	ErrCodeEngineUnavailable: {http.StatusServiceUnavailable, true},
	ErrCodeResourceExhausted: {http.StatusInsufficientStorage, true},
	ErrCodeInternal:          {http.StatusInternalServerError, false},
}

// IsRetryableCode reports whether the same request may succeed later.
func IsRetryableCode(code ErrorCode) bool { return codes[code].retryable }

// StatusOf is the HTTP status a code maps to; unknown codes are 500.
func StatusOf(code ErrorCode) int {
	if cs, ok := codes[code]; ok {
		return cs.status
	}
	return http.StatusInternalServerError
}
