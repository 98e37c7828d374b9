// Package jobs runs background work with single-flight admission per scope.
// A scope is whatever the caller keys concurrency on (an action ID for
// iterate and render jobs, a transcript ID for analyze jobs); while a scope
// has a live job, further starts against it are refused.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"copydesk/internal/logging"
)

// ErrScopeBusy is returned by Start when the scope already has a running job.
var ErrScopeBusy = errors.New("scope already has a running job")

// Job describes one live background job.
type Job struct {
	ID        string
	Kind      string
	Scope     string
	StartedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// Runner tracks live jobs and enforces one job per scope.
type Runner struct {
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	live map[string]*Job
	wg   sync.WaitGroup

	closed bool
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner constructs a Runner.
func NewRunner(logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		logger: logging.WithComponent(logger, "jobs"),
		now:    time.Now,
		live:   make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start admits a job for the scope and runs fn on its own goroutine. The
// context passed to fn is cancelled on Shutdown. Returns ErrScopeBusy when
// the scope already has a live job, and the job's ID on success.
func (r *Runner) Start(ctx context.Context, scope, kind string, fn func(context.Context)) (string, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", errors.New("runner is shut down")
	}
	if existing, ok := r.live[scope]; ok {
		r.mu.Unlock()
		return "", fmt.Errorf("%w: %s job %s", ErrScopeBusy, existing.Kind, existing.ID)
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job := &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Scope:     scope,
		StartedAt: r.now().UTC(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.live[scope] = job
	r.wg.Add(1)
	r.mu.Unlock()

	logger := r.logger.With(
		logging.String(logging.FieldJob, job.ID),
		logging.String("kind", kind),
		logging.String("scope", scope),
	)
	logger.Info("job started")

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("job panicked", logging.Any("panic", rec))
			}
			r.finish(job)
			logger.Info("job finished", logging.Duration("elapsed", time.Since(job.StartedAt)))
		}()
		fn(jobCtx)
	}()

	return job.ID, nil
}

func (r *Runner) finish(job *Job) {
	r.mu.Lock()
	if current, ok := r.live[job.Scope]; ok && current.ID == job.ID {
		delete(r.live, job.Scope)
	}
	r.mu.Unlock()
	job.cancel()
	close(job.done)
	r.wg.Done()
}

// Running reports whether the scope has a live job.
func (r *Runner) Running(scope string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[scope]
	return ok
}

// Lookup returns a copy of the live job for the scope.
func (r *Runner) Lookup(scope string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.live[scope]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Jobs returns a snapshot of all live jobs.
func (r *Runner) Jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Job, 0, len(r.live))
	for _, job := range r.live {
		out = append(out, *job)
	}
	return out
}

// Wait blocks until the scope's current job (if any) completes.
func (r *Runner) Wait(scope string) {
	r.mu.Lock()
	job, ok := r.live[scope]
	r.mu.Unlock()
	if !ok {
		return
	}
	<-job.done
}

// Shutdown cancels every live job and waits for completion or context expiry.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	for _, job := range r.live {
		job.cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background jobs: %w", ctx.Err())
	}
}
