package resilience

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// GateConfig configures an admission gate.
type GateConfig struct {
	// Name identifies this gate for metrics/logging.
	Name string `yaml:"name" mapstructure:"name"`
	// MaxConcurrent is the number of jobs allowed to run at once.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// OnWait is called when a caller starts waiting for a slot.
	OnWait func(name string) `yaml:"-" mapstructure:"-"`
	// OnAcquire is called when a slot is acquired, with the time spent waiting.
	OnAcquire func(name string, waited time.Duration) `yaml:"-" mapstructure:"-"`
	// OnRelease is called when a slot is released.
	OnRelease func(name string) `yaml:"-" mapstructure:"-"`
}

// DefaultGateConfig returns sensible defaults.
func DefaultGateConfig(name string) GateConfig {
	return GateConfig{
		Name:          name,
		MaxConcurrent: 2,
	}
}

// ApplyDefaults fills in zero-value fields.
func (c *GateConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "pipeline"
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 2
	}
}

// Validate checks the configuration.
func (c *GateConfig) Validate() error {
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("gate.max_concurrent must be at least 1 (got: %d)", c.MaxConcurrent)
	}
	return nil
}

// Gate caps how many jobs run at the same time. Callers beyond the cap block
// until a slot frees up; there is no admission timeout and no rejection.
// Waiters are admitted in arrival order.
type Gate struct {
	config  GateConfig
	sem     *semaphore.Weighted
	inUse   atomic.Int64
	waiting atomic.Int64
}

// NewGate creates a new gate. The capacity is fixed for the gate's lifetime.
func NewGate(config GateConfig) *Gate {
	config.ApplyDefaults()
	return &Gate{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Permit is a held gate slot. Release must be called exactly when the job's
// work, including cleanup, is finished; calling it again is a no-op.
type Permit struct {
	gate     *Gate
	once     sync.Once
	acquired time.Time
}

// Acquire blocks until a slot is free and returns the permit for it. The
// context only exists so shutdown can unblock waiters; callers that must not
// give up pass a context that is never cancelled.
func (g *Gate) Acquire(ctx context.Context) (*Permit, error) {
	start := time.Now()
	if !g.sem.TryAcquire(1) {
		g.waiting.Add(1)
		if g.config.OnWait != nil {
			g.config.OnWait(g.config.Name)
		}
		err := g.sem.Acquire(ctx, 1)
		g.waiting.Add(-1)
		if err != nil {
			return nil, err
		}
	}
	g.inUse.Add(1)
	if g.config.OnAcquire != nil {
		g.config.OnAcquire(g.config.Name, time.Since(start))
	}
	return &Permit{gate: g, acquired: time.Now()}, nil
}

// Release returns the slot to the gate.
func (p *Permit) Release() {
	p.once.Do(func() {
		p.gate.inUse.Add(-1)
		p.gate.sem.Release(1)
		if p.gate.config.OnRelease != nil {
			p.gate.config.OnRelease(p.gate.config.Name)
		}
	})
}

// Held returns how long the permit has been held.
func (p *Permit) Held() time.Duration {
	return time.Since(p.acquired)
}

// Execute runs fn while holding a slot.
func (g *Gate) Execute(ctx context.Context, fn func() error) error {
	permit, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	defer permit.Release()
	return fn()
}

// ExecuteGated runs a function that returns a value while holding a slot.
func ExecuteGated[T any](g *Gate, ctx context.Context, fn func() (T, error)) (T, error) {
	var result T
	err := g.Execute(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

// Name returns the gate name.
func (g *Gate) Name() string {
	return g.config.Name
}

// Available returns the number of free slots.
func (g *Gate) Available() int {
	return g.config.MaxConcurrent - int(g.inUse.Load())
}

// InUse returns the number of slots currently held.
func (g *Gate) InUse() int {
	return int(g.inUse.Load())
}

// Waiting returns the number of callers blocked in Acquire.
func (g *Gate) Waiting() int {
	return int(g.waiting.Load())
}

// MaxConcurrent returns the gate capacity.
func (g *Gate) MaxConcurrent() int {
	return g.config.MaxConcurrent
}
