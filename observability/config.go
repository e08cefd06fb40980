package observability

import (
	"fmt"
	"time"
)

// Config configures telemetry export.
type Config struct {
	// Endpoint is the OTLP HTTP endpoint host:port. Empty disables export.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows plain HTTP to the collector.
	Insecure    bool   `yaml:"insecure" mapstructure:"insecure"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	// SampleRate applies to root spans; children follow their parent.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults samples everything and exports metrics every 15s.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	if c.Interval < 0 {
		return fmt.Errorf("observability.interval must not be negative")
	}
	return nil
}

// Enabled reports whether telemetry is exported.
func (c *Config) Enabled() bool { return c.Endpoint != "" }
