package workspace

import "fmt"

// DefaultRoot is the default parent directory for job workspaces.
const DefaultRoot = "/tmp/chunkscribe"

// Config holds workspace configuration.
type Config struct {
	// Root is the parent directory of all job directories.
	Root string `mapstructure:"root" json:"root"`
	// SweepOnStart removes leftover job directories when the service boots.
	SweepOnStart bool `mapstructure:"sweep_on_start" json:"sweep_on_start"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Root == "" {
		c.Root = DefaultRoot
	}
}

// Validate checks that the workspace configuration is valid.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("workspace: root is required")
	}
	return nil
}
