// Package httpclient is the small HTTP client the engine and enrichment
// adapters share.
//
// A Client resolves request paths against an optional base URL, applies
// default headers, encodes JSON or streamed multipart bodies and turns
// transport failures and non-2xx answers into an *Error carrying a Kind.
// An optional circuit breaker wraps every call:
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:8387",
//	    Breaker: &resilience.CircuitBreakerConfig{
//	        Name:      "whisper-en",
//	        IsFailure: httpclient.IsUnavailable,
//	    },
//	})
//
//	resp, err := httpclient.Post[result](client, ctx, "/transcribe", &httpclient.Multipart{...})
//
// Zero Timeout leaves the deadline to the request context.
package httpclient
