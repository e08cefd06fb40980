package enrich

import (
	"fmt"
	"time"
)

// DefaultTimeout bounds each enrichment call.
const DefaultTimeout = 2 * time.Second

// Config configures the enrichment services. An empty URL disables that
// service.
type Config struct {
	TranslateURL string        `yaml:"translate_url" mapstructure:"translate_url"`
	SummarizeURL string        `yaml:"summarize_url" mapstructure:"summarize_url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks the enrichment configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("enrich: timeout must be positive")
	}
	return nil
}

// Enabled reports whether any service is configured.
func (c *Config) Enabled() bool {
	return c.TranslateURL != "" || c.SummarizeURL != ""
}
