package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
	"github.com/cabinet-go/cabinet/internal/registry"
)

// TextViewer turns a downloaded payload into the two text views extraction
// rules read. The pdftotext-backed implementation lives in internal/extract.
type TextViewer interface {
	Views(ctx context.Context, body []byte) (text, layout string, err error)
}

// Session is the surface a fetch script works against: sequential-looking
// network calls, the credentials for its source, and the hand-off of
// downloaded documents into the collection registry.
type Session struct {
	task        *Task
	transport   Transport
	registry    *registry.Registry
	viewer      TextViewer
	credentials map[string]string
	logger      *slog.Logger
	ctx         context.Context
}

// Credential returns a credential value for the session's source, empty when
// unset. Credential storage itself is the host's concern.
func (s *Session) Credential(key string) string { return s.credentials[key] }

// Existing returns the attribute maps of documents already known for this
// collection. Deduplication against them is the script's responsibility.
func (s *Session) Existing() []attr.Map { return s.task.existing }

// Get issues a GET exchange and suspends the script until the transport
// delivers. The result, or the transport failure, is returned at this exact
// call site.
func (s *Session) Get(rawURL string) (*Result, error) {
	return s.exchange("GET", rawURL, nil)
}

// Post issues a form-encoded POST exchange; otherwise identical to Get.
func (s *Session) Post(rawURL string, form map[string]string) (*Result, error) {
	values := make(url.Values, len(form))
	for k, v := range form {
		values.Set(k, v)
	}
	return s.exchange("POST", rawURL, values)
}

// exchange enforces the one-pending-exchange invariant, hands the exchange to
// the transport and parks the script goroutine on the exchange's delivery
// channel. Per-task ordering is a FIFO of depth one: the outcome always lands
// at the call that issued it.
func (s *Session) exchange(method, rawURL string, form url.Values) (*Result, error) {
	t := s.task

	t.mu.Lock()
	if s.ctx.Err() != nil {
		t.mu.Unlock()
		return nil, ErrCancelled
	}
	if t.pending != nil {
		perr := &ProtocolError{TaskID: t.ID, URL: rawURL, PendingURL: t.pending.URL}
		t.mu.Unlock()
		return nil, perr
	}
	ex := newExchange(method, rawURL, form)
	t.pending = ex
	if err := t.transitionLocked(StateAwaitingResult); err != nil {
		t.pending = nil
		t.mu.Unlock()
		return nil, err
	}
	t.mu.Unlock()

	s.logger.Debug("exchange issued",
		"task", t.ID, "collection", t.Collection, "method", method, "url", rawURL)
	if method == "POST" {
		s.transport.BeginPost(s.ctx, ex)
	} else {
		s.transport.BeginGet(s.ctx, ex)
	}

	select {
	case out := <-ex.done:
		t.mu.Lock()
		t.pending = nil
		err := t.transitionLocked(StateRunning)
		t.mu.Unlock()
		if err != nil {
			return nil, err
		}
		if out.Err != nil {
			return nil, &TransportError{URL: rawURL, Cause: out.Err}
		}
		return out.Result, nil
	case <-s.ctx.Done():
		t.mu.Lock()
		t.pending = nil
		t.mu.Unlock()
		return nil, ErrCancelled
	}
}

// AddDocument classifies a downloaded result against the named document type
// and, when the registry accepts it, adds it to the task's result set. The
// returned document carries the extracted attributes; scripts typically set
// its Reference for deduplication. A classification failure rejects only this
// item.
func (s *Session) AddDocument(res *Result, doctype string) (*document.Document, error) {
	text, layout := res.Contents(), res.Contents()
	if res.IsPDF() && s.viewer != nil {
		var err error
		text, layout, err = s.viewer.Views(s.ctx, res.Body)
		if err != nil {
			return nil, fmt.Errorf("text views: %w", err)
		}
	}

	doc := document.New(text, layout)
	doc.CollectionName = s.task.Collection
	doc.TypeName = doctype
	doc.Payload = res.Body
	doc.Meta["source-url"] = res.URL

	attrs, err := s.registry.Classify(s.task.Collection, doctype, doc)
	if err != nil {
		s.logger.Warn("document rejected",
			"task", s.task.ID, "collection", s.task.Collection, "type", doctype, "error", err)
		return nil, err
	}
	doc.Attributes = attrs
	s.task.addDocument(doc)
	return doc, nil
}
