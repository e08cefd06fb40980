// Package errors defines the coded errors the service returns. Each code
// maps to one HTTP status and a retryable flag; clients see the code, the
// message and the details but never the cause.
//
// Chunk-level codes (CHUNK_EXPORT_FAILED, ENGINE_CALL_FAILED) end up as
// gaps in a transcript. DECODE_FAILED, RESOURCE_EXHAUSTED and
// INTERNAL_ERROR fail one job. ENGINE_UNAVAILABLE fails every job that
// reaches the engine until it recovers.
package errors
