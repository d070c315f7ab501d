package registry

import (
	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
	"github.com/cabinet-go/cabinet/internal/match"
)

// Extractor turns a document's text views into an attribute map. It is the
// capability each document type author supplies; the engine never inspects
// the document content itself. Extractors must read only the document they
// are handed.
type Extractor interface {
	Extract(doc *document.Document) (attr.Map, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(doc *document.Document) (attr.Map, error)

func (f ExtractorFunc) Extract(doc *document.Document) (attr.Map, error) {
	return f(doc)
}

// DocumentTypeSpec is the builder callers hand to DefineDocumentType.
type DocumentTypeSpec struct {
	PublicName         string
	DisplayTemplate    string
	FormatTemplate     string
	RequiredAttributes []string
	Matcher            *match.Matcher
	Extractor          Extractor
}

// DocumentType is one installed classification inside a collection: identity,
// rendering templates, the optional transaction matcher, and the extraction
// capability.
type DocumentType struct {
	Name               string
	PublicName         string
	DisplayTemplate    string
	FormatTemplate     string
	RequiredAttributes []string
	Matcher            *match.Matcher
	Extractor          Extractor
}

// DefinitionName is the public name, falling back to the internal name when
// no public one was declared.
func (dt *DocumentType) DefinitionName() string {
	if dt.PublicName != "" {
		return dt.PublicName
	}
	return dt.Name
}

// DisplayLabel renders the human-readable label for a classified document.
func (dt *DocumentType) DisplayLabel(attrs attr.Map) string {
	return attr.Format(dt.DisplayTemplate, attrs)
}

// FileName renders the storage file name for a classified document.
func (dt *DocumentType) FileName(attrs attr.Map) string {
	return attr.Format(dt.FormatTemplate, attrs)
}

// ScoreForTransaction rates a transaction against a document of this type.
// Types without a matcher never match: matching is strictly opt-in.
func (dt *DocumentType) ScoreForTransaction(tx document.Transaction, attrs attr.Map) int {
	if dt.Matcher == nil {
		return match.NoMatchScore
	}
	return dt.Matcher.Score(tx, attrs)
}

// RelevantDateRange returns the candidate transaction window for a document
// of this type, or false when the type has no matcher or the document no
// reference date.
func (dt *DocumentType) RelevantDateRange(attrs attr.Map) (match.DateRange, bool) {
	if dt.Matcher == nil {
		return match.DateRange{}, false
	}
	return dt.Matcher.RelevantDateRange(attrs)
}
