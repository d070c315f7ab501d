package fetch

import (
	"context"
	"net/url"
	"sync"

	"github.com/google/uuid"
)

// Outcome is what the transport delivers for one exchange: a result or a
// failure, never both.
type Outcome struct {
	Result *Result
	Err    error
}

// Exchange is one request/response round-trip delegated to the transport.
// The transport reports through Deliver exactly once; later deliveries for
// the same exchange are dropped.
type Exchange struct {
	ID     uuid.UUID
	Method string
	URL    string
	Form   url.Values

	done chan Outcome
	once sync.Once
}

func newExchange(method, rawURL string, form url.Values) *Exchange {
	return &Exchange{
		ID:     uuid.New(),
		Method: method,
		URL:    rawURL,
		Form:   form,
		done:   make(chan Outcome, 1),
	}
}

// Deliver hands the exchange outcome to the suspended task. Exactly one of
// res and err should be non-nil. Safe to call from any goroutine.
func (ex *Exchange) Deliver(res *Result, err error) {
	ex.once.Do(func() {
		ex.done <- Outcome{Result: res, Err: err}
	})
}

// Transport is the host-provided collaborator performing the actual network
// round-trips. Begin calls must not block on the network: the exchange runs
// asynchronously and its outcome, including any transport-level timeout, is
// reported through Exchange.Deliver.
type Transport interface {
	BeginGet(ctx context.Context, ex *Exchange)
	BeginPost(ctx context.Context, ex *Exchange)
}
