package fetch

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
)

// Script is a fetch procedure: straight-line imperative code that logs in,
// walks listings and downloads documents through the session. The session's
// Get and Post suspend the script until the transport delivers, so the code
// reads sequentially while the exchange runs asynchronously.
type Script func(ctx context.Context, s *Session) error

// Task is one run of a collection's fetch procedure. A task is internally
// sequential: it holds at most one outstanding exchange at a time, and its
// local state is owned by the script goroutine. Tasks are independent of each
// other and may run concurrently.
type Task struct {
	ID         uuid.UUID
	Collection string

	script   Script
	existing []attr.Map

	mu      sync.Mutex
	state   TaskState
	pending *Exchange
	failure error
	docs    []*document.Document

	cancel context.CancelFunc
}

// NewTask binds a script to a collection run. existing carries the attribute
// maps of already-known documents so the script can deduplicate.
func NewTask(collection string, script Script, existing []attr.Map) *Task {
	return &Task{
		ID:         uuid.New(),
		Collection: collection,
		script:     script,
		existing:   existing,
		state:      StateReady,
	}
}

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the terminal failure of the task, nil unless State is FAILED.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failure
}

// Documents returns the documents accepted into the task's result set so far.
func (t *Task) Documents() []*document.Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*document.Document, len(t.docs))
	copy(out, t.docs)
	return out
}

// Cancel requests cancellation. The script observes it as ErrCancelled at its
// next suspension point or attempted exchange; other tasks are unaffected.
func (t *Task) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (t *Task) addDocument(doc *document.Document) {
	t.mu.Lock()
	t.docs = append(t.docs, doc)
	t.mu.Unlock()
}
