package dispatch

import (
	"time"

	"github.com/kbukum/chunkscribe/chunker"
	"github.com/kbukum/chunkscribe/transcription"
)

// Outcome classifies how one chunk ended.
type Outcome int

const (
	// Success means the engine answered and the text was incorporated.
	Success Outcome = iota
	// Skip means the chunk failed on its own and was recorded as a gap.
	Skip
	// Abort means the job cannot continue.
	Abort
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Skip:
		return "skip"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// ChunkResult is the record of one engine call.
type ChunkResult struct {
	Chunk   chunker.Chunk
	Outcome Outcome
	// Text is the text incorporated into the stream after cleanup and
	// boundary suppression.
	Text string
	// Segments are the engine segments shifted to source audio time.
	Segments []transcription.Segment
	// Err is set for Skip and Abort.
	Err      error
	Duration time.Duration
}
