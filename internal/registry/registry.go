// Package registry is the process-wide catalog of collections and their
// document types, and the classification entry point that applies a type's
// extractor to a document.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
)

// Collection is a named group of document types sharing a source. Built
// during startup registration and owned by the registry afterwards.
type Collection struct {
	Name        string
	PublicName  string
	Description string

	types map[string]*DocumentType
}

// NewCollection builds an empty collection.
func NewCollection(name, publicName, description string) *Collection {
	return &Collection{
		Name:        name,
		PublicName:  publicName,
		Description: description,
		types:       make(map[string]*DocumentType),
	}
}

// DocumentTypes returns the installed types, keyed by name.
func (c *Collection) DocumentTypes() map[string]*DocumentType {
	out := make(map[string]*DocumentType, len(c.types))
	for k, v := range c.types {
		out[k] = v
	}
	return out
}

// Registry maps collection names to their document type definitions. It is
// created explicitly at process start and passed by handle to consumers;
// registrations happen during an initialization phase, lookups and
// classification are safe from concurrently running fetch tasks.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	logger      *slog.Logger
}

// New builds an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		collections: make(map[string]*Collection),
		logger:      logger,
	}
}

// Register inserts a collection by name. Redefining an existing name replaces
// it silently: load order defines final behavior, which lets later-loaded
// definitions override earlier defaults.
func (r *Registry) Register(c *Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.collections[c.Name]; exists {
		r.logger.Info("replacing collection definition", "collection", c.Name)
	}
	r.collections[c.Name] = c
}

// Collection returns a registered collection by name.
func (r *Registry) Collection(name string) (*Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, ErrNotFound)
	}
	return c, nil
}

// Collections returns the registered collection names.
func (r *Registry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.collections))
	for n := range r.collections {
		names = append(names, n)
	}
	return names
}

// DefineDocumentType attaches a type to a collection. A spec without an
// extraction capability is diagnosed and not installed; one broken document
// type must not break the whole collection, so callers may ignore the
// returned error and continue defining the rest. Redefining a type name
// replaces the earlier definition.
func (r *Registry) DefineDocumentType(collectionName, typeName string, spec DocumentTypeSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[collectionName]
	if !ok {
		return fmt.Errorf("collection %q: %w", collectionName, ErrNotFound)
	}
	if spec.Extractor == nil {
		r.logger.Warn("document type not installed",
			"collection", collectionName, "type", typeName, "reason", "no extractor")
		return fmt.Errorf("%s/%s: %w", collectionName, typeName, ErrMissingExtractor)
	}
	c.types[typeName] = &DocumentType{
		Name:               typeName,
		PublicName:         spec.PublicName,
		DisplayTemplate:    spec.DisplayTemplate,
		FormatTemplate:     spec.FormatTemplate,
		RequiredAttributes: spec.RequiredAttributes,
		Matcher:            spec.Matcher,
		Extractor:          spec.Extractor,
	}
	return nil
}

// Lookup resolves a document type by collection and type name.
func (r *Registry) Lookup(collectionName, typeName string) (*DocumentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[collectionName]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", collectionName, ErrNotFound)
	}
	dt, ok := c.types[typeName]
	if !ok {
		return nil, fmt.Errorf("document type %s/%s: %w", collectionName, typeName, ErrNotFound)
	}
	return dt, nil
}

// Classify runs the type's extractor over the document and returns the
// attribute map. Errors and panics raised by the collaborator's extraction
// code are contained as an ExtractionError carrying the offending collection
// and type; a failure here is per-document and leaves the registry usable.
func (r *Registry) Classify(collectionName, typeName string, doc *document.Document) (attrs attr.Map, err error) {
	dt, err := r.Lookup(collectionName, typeName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("extractor panicked",
				"collection", collectionName, "type", typeName, "panic", rec)
			attrs = nil
			err = &ExtractionError{
				Collection: collectionName,
				Type:       typeName,
				Cause:      fmt.Errorf("extractor panic: %v", rec),
			}
		}
	}()
	attrs, xerr := dt.Extractor.Extract(doc)
	if xerr != nil {
		return nil, &ExtractionError{Collection: collectionName, Type: typeName, Cause: xerr}
	}
	if attrs == nil {
		attrs = attr.Map{}
	}
	for _, key := range dt.RequiredAttributes {
		if _, ok := attrs[key]; !ok {
			r.logger.Warn("expected attribute missing",
				"collection", collectionName, "type", typeName, "attribute", key)
		}
	}
	return attrs, nil
}
