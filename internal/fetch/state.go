package fetch

import "fmt"

// TaskState is the lifecycle state of one fetch task.
//
//	Ready -> Running <-> AwaitingResult -> Completed | Failed | Cancelled
//
// AwaitingResult means exactly one exchange is outstanding against the
// transport; the task returns to Running when its outcome is delivered.
type TaskState string

const (
	StateReady          TaskState = "READY"
	StateRunning        TaskState = "RUNNING"
	StateAwaitingResult TaskState = "AWAITING_RESULT"
	StateCompleted      TaskState = "COMPLETED"
	StateFailed         TaskState = "FAILED"
	StateCancelled      TaskState = "CANCELLED"
)

// IsTerminal reports whether the state is final.
func IsTerminal(s TaskState) bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

func isAllowedTransition(from, to TaskState) bool {
	switch from {
	case StateReady:
		return to == StateRunning || to == StateCancelled
	case StateRunning:
		return to == StateAwaitingResult || to == StateCompleted ||
			to == StateFailed || to == StateCancelled
	case StateAwaitingResult:
		return to == StateRunning || to == StateFailed || to == StateCancelled
	default:
		return false
	}
}

// transitionLocked validates and applies a state change. The caller holds the
// task mutex.
func (t *Task) transitionLocked(to TaskState) error {
	if !isAllowedTransition(t.state, to) {
		return fmt.Errorf("task %s: disallowed transition %s -> %s", t.ID, t.state, to)
	}
	t.state = to
	return nil
}
