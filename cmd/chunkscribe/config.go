package main

import (
	"fmt"

	"github.com/kbukum/chunkscribe/audio"
	"github.com/kbukum/chunkscribe/config"
	"github.com/kbukum/chunkscribe/enrich"
	"github.com/kbukum/chunkscribe/observability"
	"github.com/kbukum/chunkscribe/pipeline"
	"github.com/kbukum/chunkscribe/resilience"
	"github.com/kbukum/chunkscribe/server"
	"github.com/kbukum/chunkscribe/transcription"
	"github.com/kbukum/chunkscribe/transcription/whisper"
	"github.com/kbukum/chunkscribe/workspace"
)

// Config is the service configuration loaded from config.yml and the
// environment.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config          `yaml:"server" mapstructure:"server"`
	Gate          resilience.GateConfig  `yaml:"gate" mapstructure:"gate"`
	Audio         audio.Config           `yaml:"audio" mapstructure:"audio"`
	Pipeline      pipeline.Config        `yaml:"pipeline" mapstructure:"pipeline"`
	Workspace     workspace.Config       `yaml:"workspace" mapstructure:"workspace"`
	Engines       []whisper.Config       `yaml:"engines" mapstructure:"engines"`
	Routes        transcription.Routes   `yaml:"routes" mapstructure:"routes"`
	DefaultEngine string                 `yaml:"default_engine" mapstructure:"default_engine"`
	Enrich        enrich.Config          `yaml:"enrich" mapstructure:"enrich"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`
	Jobs          JobsConfig             `yaml:"jobs" mapstructure:"jobs"`
}

// JobsConfig bounds the in-memory job history.
type JobsConfig struct {
	Retain int `yaml:"retain" mapstructure:"retain"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Gate.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Workspace.ApplyDefaults()
	if len(c.Engines) == 0 {
		c.Engines = []whisper.Config{{}}
	}
	for i := range c.Engines {
		c.Engines[i].ApplyDefaults()
	}
	if c.DefaultEngine == "" {
		c.DefaultEngine = c.Engines[0].Name
	}
	c.Enrich.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
}

// Validate checks every section and that routes name configured engines.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	checks := []interface{ Validate() error }{
		&c.Server, &c.Gate, &c.Audio, &c.Pipeline, &c.Workspace, &c.Enrich, &c.Observability,
	}
	for _, s := range checks {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	names := make(map[string]bool, len(c.Engines))
	for i := range c.Engines {
		if err := c.Engines[i].Validate(); err != nil {
			return err
		}
		if names[c.Engines[i].Name] {
			return fmt.Errorf("engines: duplicate name %q", c.Engines[i].Name)
		}
		names[c.Engines[i].Name] = true
	}
	for lang, name := range c.Routes {
		if !names[name] {
			return fmt.Errorf("routes.%s: unknown engine %q", lang, name)
		}
	}
	if !names[c.DefaultEngine] {
		return fmt.Errorf("default_engine: unknown engine %q", c.DefaultEngine)
	}
	return nil
}
