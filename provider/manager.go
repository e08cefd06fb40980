package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/chunkscribe/logger"
)

// Manager resolves providers by name, by default, or through a Selector.
type Manager[T Provider] struct {
	registry *Registry[T]
	selector Selector[T]
	log      *logger.Logger

	mu          sync.RWMutex
	defaultName string
}

// NewManager creates a Manager over registry. A nil selector probes
// providers in registration order.
func NewManager[T Provider](registry *Registry[T], selector Selector[T], log *logger.Logger) *Manager[T] {
	if selector == nil {
		selector = HealthCheckSelector[T]{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager[T]{registry: registry, selector: selector, log: log.WithComponent("provider")}
}

// Add registers p under name.
func (m *Manager[T]) Add(name string, p T) error {
	if err := m.registry.Add(name, p); err != nil {
		return err
	}
	m.log.Info("provider added", logger.Fields("provider", name))
	return nil
}

// SetDefault makes Get return the named provider without probing.
func (m *Manager[T]) SetDefault(name string) error {
	if _, ok := m.registry.Get(name); !ok {
		return fmt.Errorf("set default: %w: %q", ErrNotFound, name)
	}
	m.mu.Lock()
	m.defaultName = name
	m.mu.Unlock()
	return nil
}

// Get returns the default provider, or the selector's pick when no
// default is set.
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	m.mu.RLock()
	name := m.defaultName
	m.mu.RUnlock()
	if name != "" {
		return m.GetByName(name)
	}
	return m.selector.Select(ctx, m.registry.All())
}

// GetByName returns the named provider.
func (m *Manager[T]) GetByName(name string) (T, error) {
	if p, ok := m.registry.Get(name); ok {
		return p, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Available returns every provider name in registration order.
func (m *Manager[T]) Available() []string {
	return m.registry.Names()
}

// Health checks every provider, one at a time.
func (m *Manager[T]) Health(ctx context.Context) map[string]HealthStatus {
	names := m.registry.Names()
	out := make(map[string]HealthStatus, len(names))
	for _, name := range names {
		if p, ok := m.registry.Get(name); ok {
			out[name] = Check(ctx, p)
		}
	}
	return out
}
