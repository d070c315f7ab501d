package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an unknown collection or document type name.
	ErrNotFound = errors.New("not found")

	// ErrMissingExtractor reports a document type definition without an
	// extraction capability. Such a type is not installed; the rest of the
	// collection's setup proceeds.
	ErrMissingExtractor = errors.New("document type has no extractor")
)

// ExtractionError reports that a type's extractor failed on one document.
// Extraction failures are scoped to that document and never abort a batch.
type ExtractionError struct {
	Collection string
	Type       string
	Cause      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s/%s: %v", e.Collection, e.Type, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }
