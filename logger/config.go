package logger

import (
	"fmt"
	"slices"
)

var (
	levels  = []string{"trace", "debug", "info", "warn", "error"}
	formats = []string{"json", "console", "text"}
	outputs = []string{"stdout", "stderr"}
)

// Config selects level, format and destination. Console output is meant
// for development; production runs JSON.
type Config struct {
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	Level       string `yaml:"level" mapstructure:"level"`
	Format      string `yaml:"format" mapstructure:"format"`
	Output      string `yaml:"output" mapstructure:"output"`
	NoColor     bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp   bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller      bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults logs info and up to stdout, always with timestamps.
func (c *Config) ApplyDefaults() {
	c.Level = orDefault(c.Level, "info")
	c.Format = orDefault(c.Format, "console")
	c.Output = orDefault(c.Output, "stdout")
	c.Timestamp = true
}

func (c *Config) Validate() error {
	for _, f := range []struct {
		name, value string
		allowed     []string
	}{
		{"level", c.Level, levels},
		{"format", c.Format, formats},
		{"output", c.Output, outputs},
	} {
		if !slices.Contains(f.allowed, f.value) {
			return fmt.Errorf("logging.%s must be one of %v (got: %s)", f.name, f.allowed, f.value)
		}
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
