// Package document defines the records the engine classifies and reconciles:
// fetched or scanned documents and external bank transactions.
package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/cabinet-go/cabinet/internal/attr"
)

// Document is one acquired item: the raw text views an extractor reads, plus
// the attribute map produced by classification. The attribute map is set once
// by the registry; re-classification produces a fresh map.
type Document struct {
	ID             uuid.UUID
	CollectionName string
	TypeName       string

	// Text is the plain-text rendering of the document; TextLayout preserves
	// whitespace and columns. Extraction rules pick whichever view makes
	// their pattern reliable.
	Text       string
	TextLayout string

	// Reference is the stable per-source identifier fetch scripts use for
	// deduplication. Empty when the source provides none.
	Reference string

	FilePath string
	Meta     map[string]string

	// Payload holds the raw downloaded bytes until the host persists them to
	// disk. Nil for documents ingested from an existing file.
	Payload []byte

	Attributes attr.Map
	FetchedAt  time.Time
}

// New builds an unclassified document around its two text views.
func New(text, layout string) *Document {
	return &Document{
		ID:         uuid.New(),
		Text:       text,
		TextLayout: layout,
		Meta:       make(map[string]string),
		FetchedAt:  time.Now(),
	}
}

// Transaction is an external bank feed record. Amounts are signed integers in
// minor currency units. Transactions are never created or modified here.
type Transaction struct {
	Date   time.Time
	Amount int64
	Name   string
	Memo   string
}
