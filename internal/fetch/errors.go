package fetch

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCancelled is observed by a cancelled task at its next suspension point
// or attempted exchange.
var ErrCancelled = errors.New("fetch task cancelled")

// TransportError carries a network or transport failure back to the call that
// issued the exchange. The fetch procedure decides whether to retry or abort.
type TransportError struct {
	URL   string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.URL, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// ProtocolError reports a second exchange issued while one is already
// outstanding. That is a programming defect in the fetch procedure: the call
// fails immediately instead of silently queuing, and the pending exchange is
// left untouched. Fatal to the offending task only.
type ProtocolError struct {
	TaskID     uuid.UUID
	URL        string
	PendingURL string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("task %s: exchange for %s issued while %s is outstanding",
		e.TaskID, e.URL, e.PendingURL)
}
