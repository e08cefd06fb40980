// Package dispatch sends chunks to a speech engine one at a time and folds
// the results into a stitched transcript.
//
// Each chunk ends in one of three outcomes. Success incorporates the text
// and deletes the chunk file. Skip records a gap and moves on; it covers any
// per-chunk engine failure. Abort stops the job; it covers an unreachable
// engine, exhausted engine resources and cancellation.
package dispatch
