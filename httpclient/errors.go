package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kbukum/chunkscribe/resilience"
)

// Kind classifies a failed exchange.
type Kind string

const (
	KindTimeout             Kind = "timeout"
	KindConnection          Kind = "connection"
	KindNotFound            Kind = "not_found"
	KindClient              Kind = "client"
	KindServer              Kind = "server"
	KindUnavailable         Kind = "unavailable"
	KindInsufficientStorage Kind = "insufficient_storage"
	// KindInvalid marks a request that could not be built or encoded.
	KindInvalid Kind = "invalid"
)

// Error is returned for every failed exchange. Status and Body are set
// when the server answered.
type Error struct {
	Kind   Kind
	Status int
	Body   []byte
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status > 0:
		return fmt.Sprintf("httpclient: %s (HTTP %d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("httpclient: %s: %v", e.Kind, e.Err)
	default:
		return "httpclient: " + string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// statusError returns nil for 2xx answers.
func statusError(status int, body []byte) error {
	var kind Kind
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusInsufficientStorage:
		kind = KindInsufficientStorage
	case status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout:
		kind = KindUnavailable
	case status >= 400 && status < 500:
		kind = KindClient
	default:
		kind = KindServer
	}
	return &Error{Kind: kind, Status: status, Body: body}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsTimeout(err error) bool             { return KindOf(err) == KindTimeout }
func IsConnection(err error) bool          { return KindOf(err) == KindConnection }
func IsNotFound(err error) bool            { return KindOf(err) == KindNotFound }
func IsInsufficientStorage(err error) bool { return KindOf(err) == KindInsufficientStorage }

// IsUnavailable reports whether the peer cannot serve requests: it could
// not be reached, answered 502, 503 or 504, or the breaker is refusing calls.
func IsUnavailable(err error) bool {
	switch KindOf(err) {
	case KindConnection, KindUnavailable:
		return true
	}
	return errors.Is(err, resilience.ErrCircuitOpen)
}

// ResponseBody returns the body the server answered a failed call with.
func ResponseBody(err error) []byte {
	var e *Error
	if errors.As(err, &e) {
		return e.Body
	}
	return nil
}
