package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cabinet-go/cabinet/internal/registry"
)

// Runner executes fetch tasks against a transport and a registry. One runner
// serves any number of tasks; per-task state lives on the task itself.
type Runner struct {
	transport   Transport
	registry    *registry.Registry
	viewer      TextViewer
	credentials map[string]map[string]string
	logger      *slog.Logger

	// MaxConcurrent caps how many tasks run at once under RunAll.
	// Zero means no limit.
	MaxConcurrent int
}

// NewRunner wires a runner. viewer may be nil when no PDF payloads are
// expected; credentials maps collection name to its credential set.
func NewRunner(t Transport, r *registry.Registry, viewer TextViewer,
	credentials map[string]map[string]string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		transport:   t,
		registry:    r,
		viewer:      viewer,
		credentials: credentials,
		logger:      logger,
	}
}

// Run executes one task to its terminal state. The returned error mirrors the
// task's terminal failure; a completed run returns nil. Panics in the script
// are contained as a task failure.
func (r *Runner) Run(ctx context.Context, t *Task) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.mu.Lock()
	if t.state != StateReady {
		state := t.state
		t.mu.Unlock()
		return fmt.Errorf("task %s: cannot start from state %s", t.ID, state)
	}
	t.cancel = cancel
	if err := t.transitionLocked(StateRunning); err != nil {
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()

	session := &Session{
		task:        t,
		transport:   r.transport,
		registry:    r.registry,
		viewer:      r.viewer,
		credentials: r.credentials[t.Collection],
		logger:      r.logger,
		ctx:         runCtx,
	}

	r.logger.Info("fetch task started", "task", t.ID, "collection", t.Collection)
	err := r.runScript(runCtx, t, session)

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case err == nil:
		t.state = StateCompleted
		r.logger.Info("fetch task completed",
			"task", t.ID, "collection", t.Collection, "documents", len(t.docs))
		return nil
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		t.state = StateCancelled
		r.logger.Info("fetch task cancelled", "task", t.ID, "collection", t.Collection)
		return ErrCancelled
	default:
		t.state = StateFailed
		t.failure = err
		r.logger.Error("fetch task failed",
			"task", t.ID, "collection", t.Collection, "error", err)
		return err
	}
}

func (r *Runner) runScript(ctx context.Context, t *Task, s *Session) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("fetch script panic: %v", rec)
		}
	}()
	return t.script(ctx, s)
}

// RunAll runs the tasks concurrently, each isolated from the others: one
// task's failure or cancellation never stops its siblings. Returns the number
// of tasks that reached COMPLETED.
func (r *Runner) RunAll(ctx context.Context, tasks []*Task) int {
	var g errgroup.Group
	if r.MaxConcurrent > 0 {
		g.SetLimit(r.MaxConcurrent)
	}
	done := make([]bool, len(tasks))
	for i, t := range tasks {
		g.Go(func() error {
			if err := r.Run(ctx, t); err == nil {
				done[i] = true
			}
			// Terminal state and failure are recorded on the task itself.
			return nil
		})
	}
	_ = g.Wait()
	completed := 0
	for _, ok := range done {
		if ok {
			completed++
		}
	}
	return completed
}
