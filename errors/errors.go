package errors

import "fmt"

// AppError carries a code, a client-safe message and the internal cause.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any *AppError target with the same code and no message, so
// errors.Is(err, &AppError{Code: ErrCodeDecodeFailed}) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Message == "" && t.Code == e.Code
}

// WithCause sets the cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// New builds an error with an explicit status. Retryability follows code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Retryable: IsRetryableCode(code)}
}

func newError(code ErrorCode, message string, cause error, kv ...any) *AppError {
	e := New(code, message, StatusOf(code))
	e.Cause = cause
	for i := 0; i+1 < len(kv); i += 2 {
		e.WithDetail(kv[i].(string), kv[i+1])
	}
	return e
}

func ConnectionFailed(service string) *AppError {
	return newError(ErrCodeConnectionFailed,
		fmt.Sprintf("Unable to connect to %s. Please verify the service is running.", service), nil, "service", service)
}

func Timeout(operation string) *AppError {
	return newError(ErrCodeTimeout, "The request took too long. Please try again.", nil, "operation", operation)
}

func ExternalServiceError(service string, cause error) *AppError {
	return newError(ErrCodeExternalService,
		fmt.Sprintf("The %s service encountered an error. Please try again.", service), cause, "service", service)
}

// NotFound omits the id detail when id is empty.
func NotFound(resource, id string) *AppError {
	e := newError(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), nil, "resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

func Conflict(reason string) *AppError {
	return newError(ErrCodeConflict, reason, nil)
}

func InvalidInput(field, reason string) *AppError {
	e := newError(ErrCodeInvalidInput, "Invalid input: "+reason, nil)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation is INVALID_INPUT with a caller-built message.
func Validation(message string) *AppError {
	return newError(ErrCodeInvalidInput, message, nil)
}

func MissingField(field string) *AppError {
	return newError(ErrCodeMissingField, "Missing required field: "+field, nil, "field", field)
}

// UnsupportedMedia rejects uploads that are neither audio nor video.
func UnsupportedMedia(filename, contentType string) *AppError {
	return newError(ErrCodeUnsupportedMedia, "Unsupported format. Upload an audio or video file.", nil,
		"filename", filename, "content_type", contentType)
}

// DecodeFailed is for media that yields no usable audio. reason is shown
// to the client as is.
func DecodeFailed(reason string, cause error) *AppError {
	return newError(ErrCodeDecodeFailed, reason, cause)
}

func ChunkExportFailed(index int, cause error) *AppError {
	return newError(ErrCodeChunkExportFailed, fmt.Sprintf("Chunk %d could not be exported.", index), cause, "chunk_index", index)
}

func EngineCallFailed(index int, cause error) *AppError {
	return newError(ErrCodeEngineCallFailed, fmt.Sprintf("Transcription of chunk %d failed.", index), cause, "chunk_index", index)
}

func EngineUnavailable(engine string, cause error) *AppError {
	return newError(ErrCodeEngineUnavailable,
		fmt.Sprintf("The %s speech engine is unavailable. Please try again later.", engine), cause, "engine", engine)
}

// ResourceExhausted reports a full disk or exhausted accelerator memory.
func ResourceExhausted(resource string, cause error) *AppError {
	return newError(ErrCodeResourceExhausted,
		fmt.Sprintf("The server ran out of %s. Please try again later.", resource), cause, "resource", resource)
}

// Internal hides cause from the client behind a generic message.
func Internal(cause error) *AppError {
	return newError(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.", cause)
}
