package process

import (
	"context"
	"os/exec"
	"time"
)

// Config describes one external tool.
type Config struct {
	Name   string `yaml:"name,omitempty" mapstructure:"name"`
	Binary string `yaml:"binary,omitempty" mapstructure:"binary"`
	// GracePeriod applies to commands that do not set their own.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds every run; zero leaves it to the caller's context.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Adapter is an Executor bound to one tool's defaults.
type Adapter struct {
	cfg Config
}

var _ Executor = (*Adapter)(nil)

func NewAdapter(cfg Config) *Adapter {
	return &Adapter{cfg: cfg}
}

func (a *Adapter) Name() string { return a.cfg.Name }

// Run fills in the binary and grace period when cmd leaves them empty.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		cmd.Binary = a.cfg.Binary
	}
	if cmd.GracePeriod <= 0 {
		cmd.GracePeriod = a.cfg.GracePeriod
	}
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}
	return Run(ctx, cmd)
}

// IsAvailable reports whether the tool resolves on PATH.
func (a *Adapter) IsAvailable(context.Context) bool {
	if a.cfg.Binary == "" {
		return false
	}
	_, err := exec.LookPath(a.cfg.Binary)
	return err == nil
}
