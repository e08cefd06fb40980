package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/chunkscribe/config"
	"github.com/kbukum/chunkscribe/logger"
)

// Config is satisfied by any pointer to a struct that embeds
// config.ServiceConfig and adds its own defaults and validation.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

const defaultStopTimeout = 15 * time.Second

// App owns the service lifecycle for a typed config C.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger

	stopTimeout time.Duration
	configure   []func(ctx context.Context, app *App[C]) error
	start       []Hook
	ready       []Hook
	stop        []Hook
}

// Option adjusts an App before NewApp returns it.
type Option func(*settings)

type settings struct {
	log         *logger.Logger
	stopTimeout time.Duration
}

// WithLogger replaces the logger NewApp would build from cfg.Logging.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithGracefulTimeout bounds how long the stop hooks may take together.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) { s.stopTimeout = d }
}

// NewApp applies defaults, validates cfg and sets up logging. Nothing is
// started until Run.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	s := settings{stopTimeout: defaultStopTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	base := cfg.GetServiceConfig()
	if s.log == nil {
		logger.Init(&base.Logging)
		s.log = logger.GetGlobalLogger()
	}

	return &App[C]{
		Name:        base.Name,
		Version:     base.Version,
		Cfg:         cfg,
		Logger:      s.log,
		stopTimeout: s.stopTimeout,
	}, nil
}

// OnConfigure registers a callback that builds collaborators from a.Cfg.
// Configure callbacks run before any start hook.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.configure = append(a.configure, fn)
}
