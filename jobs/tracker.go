package jobs

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/logger"
)

// DefaultRetain is how many finished jobs a Tracker keeps by default.
const DefaultRetain = 256

var (
	// ErrNotFound is returned for unknown job IDs.
	ErrNotFound = errors.New("jobs: not found")
	// ErrInvalidTransition is returned for edges outside the lifecycle.
	ErrInvalidTransition = errors.New("jobs: invalid transition")
	// ErrDuplicate is returned when registering an ID twice.
	ErrDuplicate = errors.New("jobs: duplicate id")
)

// Tracker holds job state in memory. It is safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	finished []string
	retain   int
	now      func() time.Time
	observer func(Job)
	log      *logger.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithRetain bounds how many finished jobs are kept; older ones are evicted.
func WithRetain(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.retain = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// WithObserver registers fn to receive a snapshot after every
// registration and status change. fn runs outside the tracker lock, in the
// caller's goroutine.
func WithObserver(fn func(Job)) TrackerOption {
	return func(t *Tracker) { t.observer = fn }
}

// NewTracker creates an empty Tracker.
func NewTracker(log *logger.Logger, opts ...TrackerOption) *Tracker {
	if log == nil {
		log = logger.NewNop()
	}
	t := &Tracker{
		jobs:   make(map[string]*Job),
		retain: DefaultRetain,
		now:    time.Now,
		log:    log.WithComponent("jobs"),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Register adds job in the pending state.
func (t *Tracker) Register(job Job) (Job, error) {
	if job.ID == "" {
		return Job{}, fmt.Errorf("jobs: empty id")
	}
	t.mu.Lock()
	if _, ok := t.jobs[job.ID]; ok {
		t.mu.Unlock()
		return Job{}, fmt.Errorf("%w: %s", ErrDuplicate, job.ID)
	}
	now := t.now()
	job.Status = StatusPending
	job.CreatedAt, job.UpdatedAt = now, now
	job.Error, job.ErrorCode = "", ""
	t.jobs[job.ID] = &job
	t.mu.Unlock()

	t.notify(job)
	return job, nil
}

// Transition moves a job to status.
func (t *Tracker) Transition(id string, status Status) error {
	if status == StatusFailed {
		return t.Fail(id, nil)
	}
	t.mu.Lock()
	job, err := t.lookup(id)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if !CanTransition(job.Status, status) {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, status)
	}
	snap := t.apply(job, status)
	t.mu.Unlock()

	t.log.Debug("job transition", logger.Fields(logger.FieldJobID, id, logger.FieldStatus, status))
	t.notify(snap)
	return nil
}

// Fail moves a non-terminal job to failed, recording cause.
func (t *Tracker) Fail(id string, cause error) error {
	t.mu.Lock()
	job, err := t.lookup(id)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if job.Status.Terminal() {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, StatusFailed)
	}
	if cause != nil {
		job.Error = cause.Error()
		if appErr, ok := apperrors.AsAppError(cause); ok {
			job.Error = appErr.Message
			job.ErrorCode = string(appErr.Code)
		}
	}
	snap := t.apply(job, StatusFailed)
	t.mu.Unlock()

	t.notify(snap)
	return nil
}

// Get returns a snapshot of the job.
func (t *Tracker) Get(id string) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, err := t.lookup(id)
	if err != nil {
		return Job{}, err
	}
	return *job, nil
}

// Count returns how many tracked jobs are in status.
func (t *Tracker) Count(status Status) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, j := range t.jobs {
		if j.Status == status {
			n++
		}
	}
	return n
}

// Snapshot returns every tracked job, oldest first.
func (t *Tracker) Snapshot() []Job {
	t.mu.RLock()
	out := make([]Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, *j)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (t *Tracker) lookup(id string) (*Job, error) {
	job, ok := t.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return job, nil
}

// apply sets the status, evicts the oldest finished jobs past the bound and
// returns a snapshot of job. Callers hold t.mu.
func (t *Tracker) apply(job *Job, status Status) Job {
	job.Status = status
	job.UpdatedAt = t.now()
	snap := *job
	if !status.Terminal() {
		return snap
	}
	t.finished = append(t.finished, job.ID)
	for len(t.finished) > t.retain {
		delete(t.jobs, t.finished[0])
		t.finished = t.finished[1:]
	}
	return snap
}

func (t *Tracker) notify(job Job) {
	if t.observer != nil {
		t.observer(job)
	}
}
