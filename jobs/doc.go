// Package jobs tracks transcription jobs and enforces their lifecycle.
//
// A job moves forward through pending, admitted, normalizing, chunking,
// transcribing and stitching to completed. Any non-terminal state may move
// to failed. No state is entered twice.
package jobs
