// Package server provides the HTTP server for the transcription service:
// Gin routing behind an h2c handler, a standard middleware chain and the
// service's system endpoints.
//
// # Middleware
//
// Built-in middleware (server/middleware), applied around every route:
//
//   - Recovery: panic recovery with a structured INTERNAL_ERROR body
//   - RequestID: X-Request-Id generation and propagation into the logger context
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: upload size limit
//   - RequestLogger: request logging with duration
//   - Metrics: request counters and durations per Gin route
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /live: liveness, always {"live": true}
//   - /health: admission gate and engine health
//   - /ready: readiness derived from the same checks
//   - /info: build information
package server
