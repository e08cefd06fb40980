package transcription

import (
	"context"
	"errors"

	"github.com/kbukum/chunkscribe/provider"
)

var (
	// ErrEngineUnavailable marks failures where the engine is unreachable
	// or reports itself out of service. The dispatcher aborts the job on it.
	ErrEngineUnavailable = errors.New("transcription: engine unavailable")
	// ErrResourceExhausted marks engine failures caused by exhausted
	// accelerator memory or disk on the engine host.
	ErrResourceExhausted = errors.New("transcription: engine resources exhausted")
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe sends audio for transcription and returns the result.
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
}

// CacheReleaser is implemented by engines that hold accelerator memory which
// can be released between jobs.
type CacheReleaser interface {
	ReleaseCache(ctx context.Context) error
}
