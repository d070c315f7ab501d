package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
)

// StoredDocument is a document row together with its rendered labels.
type StoredDocument struct {
	ID         uuid.UUID
	Collection string
	Type       string
	Reference  string
	FilePath   string
	Label      string
	FileName   string
	Attributes attr.Map
	FetchedAt  time.Time
}

type DocumentRepository interface {
	Save(ctx context.Context, doc *document.Document, label, fileName string) error
	ListByCollection(ctx context.Context, collection string) ([]StoredDocument, error)
	// References returns the known dedup references for a collection, for
	// fetch scripts to skip already-downloaded items.
	References(ctx context.Context, collection string) (map[string]bool, error)
}

type documentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *documentRepository) Save(ctx context.Context, doc *document.Document, label, fileName string) error {
	attrs, err := json.Marshal(doc.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents
			(id, collection, doc_type, reference, file_path, label, file_name, attributes, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID.String(), doc.CollectionName, doc.TypeName, doc.Reference,
		doc.FilePath, label, fileName, string(attrs), doc.FetchedAt.UTC())
	if err != nil {
		r.logger.Error("failed to save document",
			"collection", doc.CollectionName, "type", doc.TypeName, "error", err)
		return err
	}
	return nil
}

func (r *documentRepository) ListByCollection(ctx context.Context, collection string) ([]StoredDocument, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, collection, doc_type, reference, file_path, label, file_name, attributes, fetched_at
		 FROM documents WHERE collection = $1 ORDER BY fetched_at`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredDocument
	for rows.Next() {
		var d StoredDocument
		var id, attrs string
		if err := rows.Scan(&id, &d.Collection, &d.Type, &d.Reference,
			&d.FilePath, &d.Label, &d.FileName, &attrs, &d.FetchedAt); err != nil {
			return nil, err
		}
		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("document id: %w", err)
		}
		if err := json.Unmarshal([]byte(attrs), &d.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *documentRepository) References(ctx context.Context, collection string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT reference FROM documents WHERE collection = $1 AND reference <> ''`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make(map[string]bool)
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs[ref] = true
	}
	return refs, rows.Err()
}
