package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cabinet-go/cabinet/internal/document"
	"github.com/cabinet-go/cabinet/internal/extract"
	"github.com/cabinet-go/cabinet/internal/registry"
	"github.com/cabinet-go/cabinet/internal/repository"
)

// Service turns an inbox file into a stored, classified document.
type Service struct {
	registry *registry.Registry
	pdf      *extract.PDFToText
	docs     repository.DocumentRepository
	logger   *slog.Logger
}

func NewService(reg *registry.Registry, pdf *extract.PDFToText,
	docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{registry: reg, pdf: pdf, docs: docs, logger: logger}
}

// IngestFile converts the file's text views, classifies it against the given
// collection and type, and stores it with rendered label and file name. A
// classification failure still stores the document with whatever attributes
// the templates can tolerate: an unparseable bill is worth keeping.
func (s *Service) IngestFile(ctx context.Context, path, collection, doctype string) (*document.Document, error) {
	text, layout, err := s.pdf.FromFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	doc := document.New(text, layout)
	doc.CollectionName = collection
	doc.TypeName = doctype
	doc.FilePath = path

	attrs, err := s.registry.Classify(collection, doctype, doc)
	if err != nil {
		s.logger.Warn("classification failed, storing unparsed",
			"file", path, "collection", collection, "type", doctype, "error", err)
		attrs = nil
	}
	doc.Attributes = attrs
	if ref := attrs.String("reference"); ref != "" {
		doc.Reference = ref
	}

	dt, err := s.registry.Lookup(collection, doctype)
	if err != nil {
		return nil, err
	}
	label := dt.DisplayLabel(attrs)
	fileName := dt.FileName(attrs)

	if err := s.docs.Save(ctx, doc, label, fileName); err != nil {
		return nil, fmt.Errorf("store %s: %w", path, err)
	}
	s.logger.Info("document ingested",
		"file", path, "collection", collection, "type", doctype, "label", label)
	return doc, nil
}

// Run consumes watcher events until the context is done.
func (s *Service) Run(ctx context.Context, files <-chan string, collection, doctype string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-files:
			if !ok {
				return
			}
			if _, err := s.IngestFile(ctx, path, collection, doctype); err != nil {
				s.logger.Error("ingest failed", "file", path, "error", err)
			}
		}
	}
}
