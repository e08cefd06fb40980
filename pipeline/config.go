package pipeline

import (
	"fmt"

	"github.com/kbukum/chunkscribe/chunker"
	"github.com/kbukum/chunkscribe/stitch"
)

// Config holds per-job processing settings.
type Config struct {
	Chunking chunker.Options `yaml:"chunking" mapstructure:"chunking"`
	// MaxGroupSize is the number of chunk segments per Timestamp group.
	MaxGroupSize int `yaml:"max_group_size" mapstructure:"max_group_size"`
	// Model overrides the engine's default model.
	Model string `yaml:"model" mapstructure:"model"`
	// KeepChunks leaves chunk files on disk until the job ends instead of
	// deleting each one once transcribed.
	KeepChunks bool `yaml:"keep_chunks" mapstructure:"keep_chunks"`
	// SkipCacheRelease disables releasing engine accelerator memory at
	// job teardown.
	SkipCacheRelease bool `yaml:"skip_cache_release" mapstructure:"skip_cache_release"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.Chunking.ApplyDefaults()
	if c.MaxGroupSize <= 0 {
		c.MaxGroupSize = stitch.DefaultMaxGroupSize
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Chunking.Validate(); err != nil {
		return err
	}
	if c.MaxGroupSize < 1 {
		return fmt.Errorf("pipeline.max_group_size must be at least 1 (got: %d)", c.MaxGroupSize)
	}
	return nil
}
