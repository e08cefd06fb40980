package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/chunkscribe/resilience"
)

// Request describes one call. Body may be nil, a *Multipart, []byte,
// an io.Reader, or any value to be sent as JSON.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    any
}

// Response is a completed 2xx exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client sends requests to one peer.
type Client struct {
	base    string
	headers map[string]string
	http    *http.Client
	breaker *resilience.CircuitBreaker
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.Breaker != nil {
		c.breaker = resilience.NewCircuitBreaker(*cfg.Breaker)
	}
	return c, nil
}

// Breaker returns the client's circuit breaker, or nil.
func (c *Client) Breaker() *resilience.CircuitBreaker { return c.breaker }

// Do sends req. Non-2xx answers come back as *Error; the breaker, when
// configured, may refuse the call with resilience.ErrCircuitOpen.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.breaker == nil {
		return c.send(ctx, req)
	}
	var resp *Response
	err := c.breaker.Execute(func() error {
		var err error
		resp, err = c.send(ctx, req)
		return err
	})
	return resp, err
}

func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, &Error{Kind: KindInvalid, Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("read body: %w", err))
	}
	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func transportError(ctx context.Context, err error) *Error {
	var enc *encodeError
	var timeout interface{ Timeout() bool }
	switch {
	case errors.As(err, &enc):
		return &Error{Kind: KindInvalid, Err: err}
	case ctx.Err() != nil, errors.As(err, &timeout) && timeout.Timeout():
		return &Error{Kind: KindTimeout, Err: err}
	default:
		return &Error{Kind: KindConnection, Err: err}
	}
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	target := req.Path
	if c.base != "" && !strings.Contains(target, "://") {
		target = c.base + "/" + strings.TrimLeft(target, "/")
	}

	body, contentType, err := encode(req.Body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		if body != nil {
			body.Close()
		}
		return nil, err
	}

	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	// A multipart boundary must always win over a default Content-Type.
	if _, ok := req.Body.(*Multipart); ok || httpReq.Header.Get("Content-Type") == "" {
		if contentType != "" {
			httpReq.Header.Set("Content-Type", contentType)
		}
	}
	return httpReq, nil
}

func encode(body any) (io.ReadCloser, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return v.stream()
	case []byte:
		return io.NopCloser(bytes.NewReader(v)), "", nil
	case io.Reader:
		return io.NopCloser(v), "", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("encode json: %w", err)
		}
		return io.NopCloser(bytes.NewReader(data)), "application/json", nil
	}
}

// Option adjusts a Request built by Post.
type Option func(*Request)

// WithHeader sets a header on a single request.
func WithHeader(key, value string) Option {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// Result is a decoded JSON answer.
type Result[T any] struct {
	StatusCode int
	Data       T
}

// Post sends body and decodes the JSON answer into T. An empty answer
// leaves Data at its zero value.
func Post[T any](c *Client, ctx context.Context, path string, body any, opts ...Option) (*Result[T], error) {
	req := Request{Method: http.MethodPost, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &Result[T]{StatusCode: resp.StatusCode}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out.Data); err != nil {
		return nil, fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return out, nil
}
