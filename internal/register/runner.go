package register

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Status is the lifecycle state of a run.
type Status string

const (
	// StatusPending is a run that has been submitted but not started.
	StatusPending Status = "pending"
	// StatusRunning is a run currently accumulating.
	StatusRunning Status = "running"
	// StatusCompleted is a run whose items were published.
	StatusCompleted Status = "completed"
	// StatusCancelled is a run superseded by a newer one or stopped.
	StatusCancelled Status = "cancelled"
	// StatusFailed is a run whose work returned an error.
	StatusFailed Status = "failed"
)

// ErrRunnerStopped is returned by Submit after Stop.
var ErrRunnerStopped = errors.New("runner stopped")

// Work produces register items. It must honour ctx cancellation.
type Work func(ctx context.Context) ([]Item, error)

// Run describes one submission.
type Run struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	SubmittedAt time.Time  `json:"submittedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Result is a published register together with the run that produced it.
type Result struct {
	Run   Run    `json:"run"`
	Items []Item `json:"items"`
}

// Runner runs register work single-flight with replacement: submitting new
// work cancels the run in flight, and only the most recently submitted run
// may publish. It is safe for concurrent use.
type Runner struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	gen     uint64
	cancel  context.CancelFunc
	current Run
	latest  *Result
	closed  bool

	log       zerolog.Logger
	onPublish func(Result)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// OnPublish registers fn to be called with every published result. fn runs
// while the runner holds its lock, so results arrive in publication order; it
// must not call back into the runner.
func OnPublish(fn func(Result)) RunnerOption {
	return func(r *Runner) { r.onPublish = fn }
}

// NewRunner creates a Runner logging to log.
func NewRunner(log zerolog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit cancels any run in flight and starts work in a new goroutine. The
// run context derives from ctx. It returns the new run ID.
func (r *Runner) Submit(ctx context.Context, work Work) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrRunnerStopped
	}

	if r.cancel != nil {
		r.cancel()
		r.log.Debug().Str("run_id", r.current.ID).Msg("superseding register run")
	}

	r.gen++
	gen := r.gen
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.current = Run{
		ID:          uuid.New().String(),
		Status:      StatusPending,
		SubmittedAt: time.Now(),
	}
	id := r.current.ID

	r.wg.Add(1)
	go r.execute(runCtx, cancel, gen, id, work)

	return id, nil
}

func (r *Runner) execute(ctx context.Context, cancel context.CancelFunc, gen uint64, id string, work Work) {
	defer r.wg.Done()
	defer cancel()

	r.setStatus(gen, StatusRunning)
	items, err := work(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen {
		r.log.Debug().Str("run_id", id).Msg("dropping superseded register run")
		return
	}

	now := time.Now()
	r.current.CompletedAt = &now

	switch {
	case err != nil && ctx.Err() != nil:
		r.current.Status = StatusCancelled
		r.current.Error = err.Error()
		r.log.Debug().Str("run_id", id).Msg("register run cancelled")
	case err != nil:
		r.current.Status = StatusFailed
		r.current.Error = err.Error()
		r.log.Error().Err(err).Str("run_id", id).Msg("register run failed")
	default:
		r.current.Status = StatusCompleted
		res := Result{Run: r.current, Items: items}
		r.latest = &res
		r.log.Debug().Str("run_id", id).Int("items", len(items)).Msg("register run published")
		if r.onPublish != nil {
			r.onPublish(res)
		}
	}
	r.cancel = nil
}

func (r *Runner) setStatus(gen uint64, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return
	}
	r.current.Status = status
}

// Current returns the most recently submitted run.
func (r *Runner) Current() Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Latest returns the last published result, or false if none has completed.
func (r *Runner) Latest() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return Result{}, false
	}
	return *r.latest, true
}

// Stop cancels the run in flight and waits for it to return, or for ctx.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if r.cancel != nil {
		r.cancel()
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
		return fmt.Errorf("Stop: waiting for register run: %w", ctx.Err())
	}
}
