// Package export renders a collection's classified documents into XLSX
// workbooks for review outside the application.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/repository"
)

// Service is a small façade over the document repository that produces XLSX
// bytes.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportCollectionXLSX returns a workbook listing every stored document of
// the collection with its rendered label and file name.
func (s *Service) ExportCollectionXLSX(ctx context.Context, collection string) ([]byte, error) {
	start := time.Now()

	docs, err := s.docs.ListByCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Type", "Label", "File Name", "Reference", "Date", "Amount", "Fetched At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, d := range docs {
		values := []any{
			d.Type,
			d.Label,
			d.FileName,
			d.Reference,
			cellDate(d.Attributes),
			cellAmount(d.Attributes),
			d.FetchedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("exported collection",
		"collection", collection, "documents", len(docs), "duration", time.Since(start))
	return buf.Bytes(), nil
}

// cellDate picks the conventional date attribute when present.
func cellDate(attrs attr.Map) string {
	for _, key := range []string{"date", "month"} {
		if t, ok := attrs.Time(key); ok {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// cellAmount picks the conventional amount attribute when present.
func cellAmount(attrs attr.Map) string {
	for _, key := range []string{"amount", "montant", "total"} {
		if n, ok := attrs.Number(key); ok {
			return attr.FormatAmount(n)
		}
	}
	return ""
}
