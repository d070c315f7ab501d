// Package reconcile pairs classified documents with bank transactions using
// each document type's matcher.
package reconcile

import (
	"log/slog"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
	"github.com/cabinet-go/cabinet/internal/registry"
)

// acceptThreshold separates a definite match from noise when scores from
// several signals are blended additively.
const acceptThreshold = 1000

// Service answers "which transaction does this document correspond to" for a
// caller that supplies the bank feed.
type Service struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Candidates pre-filters the feed down to the transactions inside the
// document's relevant date window. Returns nil when the type has no matcher
// or the document no reference date: such documents never match, so there is
// nothing worth scoring.
func (s *Service) Candidates(dt *registry.DocumentType, attrs attr.Map, feed []document.Transaction) []document.Transaction {
	window, ok := dt.RelevantDateRange(attrs)
	if !ok {
		return nil
	}
	var out []document.Transaction
	for _, tx := range feed {
		if tx.Date.Before(window.Start) || tx.Date.After(window.End) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// BestTransaction returns the first candidate scoring above the acceptance
// threshold, or false when nothing in the feed matches.
func (s *Service) BestTransaction(dt *registry.DocumentType, attrs attr.Map, feed []document.Transaction) (document.Transaction, bool) {
	for _, tx := range s.Candidates(dt, attrs, feed) {
		if dt.ScoreForTransaction(tx, attrs) > acceptThreshold {
			return tx, true
		}
	}
	return document.Transaction{}, false
}
