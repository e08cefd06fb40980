package chunker

import (
	"fmt"
	"time"
)

// Options controls window sizing.
type Options struct {
	// ChunkDuration is the length of each window.
	ChunkDuration time.Duration `yaml:"chunk_duration" mapstructure:"chunk_duration"`
	// MinChunkDuration is the shortest trailing window kept on its own.
	MinChunkDuration time.Duration `yaml:"min_chunk_duration" mapstructure:"min_chunk_duration"`
}

// DefaultOptions returns 10 second windows with a 1 second minimum.
func DefaultOptions() Options {
	return Options{ChunkDuration: 10 * time.Second, MinChunkDuration: time.Second}
}

// ApplyDefaults fills unset fields.
func (o *Options) ApplyDefaults() {
	d := DefaultOptions()
	if o.ChunkDuration <= 0 {
		o.ChunkDuration = d.ChunkDuration
	}
	if o.MinChunkDuration <= 0 {
		o.MinChunkDuration = d.MinChunkDuration
	}
}

// Validate checks that the minimum fits inside a window.
func (o *Options) Validate() error {
	if o.ChunkDuration <= 0 {
		return fmt.Errorf("chunker.chunk_duration must be positive")
	}
	if o.MinChunkDuration <= 0 || o.MinChunkDuration >= o.ChunkDuration {
		return fmt.Errorf("chunker.min_chunk_duration must be positive and shorter than chunk_duration (got: %s)", o.MinChunkDuration)
	}
	return nil
}

// frames converts d to a frame count at rate.
func frames(d time.Duration, rate int) int64 {
	return int64(d) * int64(rate) / int64(time.Second)
}
