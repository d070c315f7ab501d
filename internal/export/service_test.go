package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/document"
	"github.com/cabinet-go/cabinet/internal/repository"
)

type fakeDocs struct {
	rows []repository.StoredDocument
}

func (f *fakeDocs) Save(ctx context.Context, doc *document.Document, label, fileName string) error {
	return nil
}

func (f *fakeDocs) ListByCollection(ctx context.Context, collection string) ([]repository.StoredDocument, error) {
	return f.rows, nil
}

func (f *fakeDocs) References(ctx context.Context, collection string) (map[string]bool, error) {
	return nil, nil
}

func TestExportCollectionXLSX(t *testing.T) {
	when := time.Date(2024, time.March, 7, 10, 30, 0, 0, time.UTC)
	docs := &fakeDocs{rows: []repository.StoredDocument{
		{
			ID:         uuid.New(),
			Collection: "bills",
			Type:       "invoice",
			Reference:  "INV-001",
			Label:      "Bill from ACME",
			FileName:   "Bill-ACME-2024-03.pdf",
			Attributes: attr.Map{"date": when, "amount": int64(12345)},
			FetchedAt:  when,
		},
		{
			ID:         uuid.New(),
			Collection: "bills",
			Type:       "payslip",
			Label:      "Payslip",
			Attributes: attr.Map{},
			FetchedAt:  when,
		},
	}}

	data, err := NewService(docs, nil).ExportCollectionXLSX(context.Background(), "bills")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Documents")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("workbook has %d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "Type" || rows[0][1] != "Label" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "invoice" || rows[1][1] != "Bill from ACME" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[1][4] != "2024-03-07" || rows[1][5] != "123.45" {
		t.Errorf("date/amount cells = %q/%q", rows[1][4], rows[1][5])
	}
}

func TestCellHelpers(t *testing.T) {
	when := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	if got := cellDate(attr.Map{"month": when}); got != "2024-01-02" {
		t.Errorf("cellDate fell back wrong: %q", got)
	}
	if got := cellDate(attr.Map{}); got != "" {
		t.Errorf("cellDate on empty map = %q", got)
	}
	if got := cellAmount(attr.Map{"montant": int64(-50)}); got != "-0.50" {
		t.Errorf("cellAmount = %q", got)
	}
}
