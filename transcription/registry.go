package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/provider"
)

// NewManager creates a provider manager for speech engines. Without a
// default, unrouted languages go to the first reachable engine in
// registration order.
func NewManager(log *logger.Logger) *provider.Manager[Provider] {
	return provider.NewManager[Provider](provider.NewRegistry[Provider](), provider.HealthCheckSelector[Provider]{}, log)
}

// Routes maps a language code to the name of the engine serving it.
type Routes map[string]string

// Router picks the engine for a language.
type Router struct {
	manager *provider.Manager[Provider]
	routes  Routes
}

// NewRouter creates a Router over manager. Languages without a route use the
// manager's default or selector.
func NewRouter(manager *provider.Manager[Provider], routes Routes) *Router {
	normalized := make(Routes, len(routes))
	for lang, name := range routes {
		normalized[strings.ToLower(lang)] = name
	}
	return &Router{manager: manager, routes: normalized}
}

// Route returns the engine for language. Routing does not probe engine
// health; an unreachable engine surfaces on the first Transcribe call.
func (r *Router) Route(ctx context.Context, language string) (Provider, error) {
	if name, ok := r.routes[strings.ToLower(language)]; ok {
		p, err := r.manager.GetByName(name)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", language, err)
		}
		return p, nil
	}
	p, err := r.manager.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("route %q: %w: %w", language, ErrEngineUnavailable, err)
	}
	return p, nil
}

// Manager returns the underlying provider manager.
func (r *Router) Manager() *provider.Manager[Provider] {
	return r.manager
}

// CacheReleasers returns every initialized engine that can release
// accelerator memory.
func (r *Router) CacheReleasers() []CacheReleaser {
	var out []CacheReleaser
	for _, name := range r.manager.Available() {
		p, err := r.manager.GetByName(name)
		if err != nil {
			continue
		}
		if cr, ok := p.(CacheReleaser); ok {
			out = append(out, cr)
		}
	}
	return out
}

// ReleaseAll asks every engine that holds accelerator memory to free it.
// All engines are tried; failures come back joined.
func (r *Router) ReleaseAll(ctx context.Context) error {
	var errs []error
	for _, cr := range r.CacheReleasers() {
		if err := cr.ReleaseCache(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
