package provider

import (
	"fmt"
	"sync"
)

// Registry holds named providers in the order they were added.
type Registry[T Provider] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{items: make(map[string]T)}
}

// Add registers p under name.
func (r *Registry[T]) Add(name string, p T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.items[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get returns the provider registered under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[name]
	return p, ok
}

// Names returns the registered names in insertion order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// All returns the providers in insertion order.
func (r *Registry[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.items[name])
	}
	return out
}
