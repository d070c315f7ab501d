package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{
		DSN: filepath.Join(t.TempDir(), "cabinet.db"),
	}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	docs := s.Documents()

	when := time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)
	doc := document.New("text", "layout")
	doc.CollectionName = "bills"
	doc.TypeName = "invoice"
	doc.Reference = "INV-001"
	doc.FilePath = "/archive/INV-001.pdf"
	doc.Attributes = attr.Map{"who": "ACME", "amount": int64(12345), "date": when}

	if err := docs.Save(ctx, doc, "Bill from ACME", "Bill-ACME-2024-03.pdf"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := docs.ListByCollection(ctx, "bills")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("listed %d documents, want 1", len(got))
	}
	d := got[0]
	if d.ID != doc.ID || d.Type != "invoice" || d.Label != "Bill from ACME" {
		t.Errorf("row = %+v", d)
	}
	if n, ok := d.Attributes.Number("amount"); !ok || n != 12345 {
		t.Errorf("amount survived as %d (%v)", n, ok)
	}
	if ts, ok := d.Attributes.Time("date"); !ok || !ts.Equal(when) {
		t.Errorf("date survived as %v (%v)", ts, ok)
	}

	if other, err := docs.ListByCollection(ctx, "other"); err != nil || len(other) != 0 {
		t.Errorf("foreign collection returned %d rows (%v)", len(other), err)
	}
}

func TestDocumentReferences(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	docs := s.Documents()

	for _, ref := range []string{"A", "B", ""} {
		doc := document.New("", "")
		doc.CollectionName = "bills"
		doc.TypeName = "invoice"
		doc.Reference = ref
		doc.Attributes = attr.Map{}
		if err := docs.Save(ctx, doc, "", ""); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	refs, err := docs.References(ctx, "bills")
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	if len(refs) != 2 || !refs["A"] || !refs["B"] {
		t.Errorf("references = %v, want A and B without the empty one", refs)
	}
}

func TestTransactionsListBetween(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	txs := s.Transactions()

	day := func(d int) time.Time {
		return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
	}
	for d, name := range map[int]string{5: "early", 10: "inside", 15: "late"} {
		err := txs.Save(ctx, document.Transaction{Date: day(d), Amount: int64(d * 100), Name: name})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := txs.ListBetween(ctx, day(8), day(12))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Name != "inside" {
		t.Fatalf("listed %v, want only the transaction inside the window", got)
	}
	if got[0].Amount != 1000 {
		t.Errorf("amount = %d", got[0].Amount)
	}
}

func TestHealthCheck(t *testing.T) {
	s := openTestStore(t)
	if err := s.HealthCheck(context.Background(), time.Second); err != nil {
		t.Errorf("health: %v", err)
	}
}
