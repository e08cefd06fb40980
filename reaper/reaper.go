package reaper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/transcription"
)

// DefaultReleaseTimeout bounds a single engine cache release.
const DefaultReleaseTimeout = 10 * time.Second

type action struct {
	name string
	fn   func(ctx context.Context) error
}

// Reaper owns the teardown of one job.
type Reaper struct {
	jobID string
	log   *logger.Logger

	mu      sync.Mutex
	actions []action
	paths   []string
	closed  bool

	once sync.Once
	err  error
}

// New creates a Reaper for jobID.
func New(jobID string, log *logger.Logger) *Reaper {
	if log == nil {
		log = logger.NewNop()
	}
	return &Reaper{
		jobID: jobID,
		log:   log.WithComponent("reaper").WithJob(jobID),
	}
}

// Track registers path (file or directory) for removal on Close.
func (r *Reaper) Track(path string) {
	if path == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Warn("path tracked after close", logger.Fields(logger.FieldPath, path))
		return
	}
	r.paths = append(r.paths, path)
}

// Defer registers fn to run on Close. Actions run in reverse registration
// order, before tracked paths are removed.
func (r *Reaper) Defer(name string, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Warn("action deferred after close", logger.Fields("action", name))
		return
	}
	r.actions = append(r.actions, action{name: name, fn: fn})
}

// ReleaseEngine registers an accelerator cache release for releaser.
func (r *Reaper) ReleaseEngine(releaser transcription.CacheReleaser) {
	if releaser == nil {
		return
	}
	r.Defer("release engine cache", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, DefaultReleaseTimeout)
		defer cancel()
		return releaser.ReleaseCache(ctx)
	})
}

// Close runs every registered action and removes every tracked path. It
// never stops early; failures are logged and returned joined. Only the first
// call does work, later calls return the same error.
func (r *Reaper) Close(ctx context.Context) error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		actions, paths := r.actions, r.paths
		r.actions, r.paths = nil, nil
		r.mu.Unlock()

		// Cleanup must run even when the job's context is already done.
		ctx = context.WithoutCancel(ctx)
		start := time.Now()

		var errs []error
		for i := len(actions) - 1; i >= 0; i-- {
			a := actions[i]
			if err := r.run(ctx, a); err != nil {
				r.log.Error("cleanup action failed", logger.MergeWithError(logger.Fields("action", a.name), err))
				errs = append(errs, fmt.Errorf("%s: %w", a.name, err))
			}
		}
		for _, p := range paths {
			if err := os.RemoveAll(p); err != nil {
				r.log.Error("remove failed", logger.MergeWithError(logger.Fields(logger.FieldPath, p), err))
				errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
			}
		}

		r.err = errors.Join(errs...)
		r.log.Debug("job resources released", logger.MergeWithDuration(logger.Fields(
			"actions", len(actions),
			"paths", len(paths),
			"failures", len(errs),
		), time.Since(start)))
	})
	return r.err
}

// Closed reports whether Close has been called.
func (r *Reaper) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Reaper) run(ctx context.Context, a action) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return a.fn(ctx)
}
