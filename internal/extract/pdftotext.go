// Package extract produces the text views extraction rules read from fetched
// or scanned files. PDFs are converted twice: once plain, once with layout
// preserved, since column-sensitive patterns need the latter.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// PDFToText shells out to the pdftotext binary. There is no configuration
// beyond the binary name; everything else is fixed flags.
type PDFToText struct {
	Binary string
	Logger *slog.Logger
}

// NewPDFToText builds a converter using the pdftotext found on PATH.
func NewPDFToText(logger *slog.Logger) *PDFToText {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFToText{Binary: "pdftotext", Logger: logger}
}

// FromFile converts a PDF on disk into its plain and layout-preserving text
// views.
func (p *PDFToText) FromFile(ctx context.Context, path string) (text, layout string, err error) {
	text, err = p.run(ctx, path, false)
	if err != nil {
		return "", "", err
	}
	layout, err = p.run(ctx, path, true)
	if err != nil {
		return "", "", err
	}
	return text, layout, nil
}

// Views converts an in-memory PDF payload, as downloaded by a fetch task. The
// payload goes through a temporary file because pdftotext reads files.
func (p *PDFToText) Views(ctx context.Context, body []byte) (text, layout string, err error) {
	tmp, err := os.CreateTemp("", "cabinet-*.pdf")
	if err != nil {
		return "", "", fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", "", err
	}
	return p.FromFile(ctx, tmp.Name())
}

func (p *PDFToText) run(ctx context.Context, path string, keepLayout bool) (string, error) {
	args := []string{"-enc", "UTF-8"}
	if keepLayout {
		args = append(args, "-layout")
	}
	args = append(args, path, "-")

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Binary, args...)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		p.Logger.Error("pdftotext failed",
			"file", filepath.Base(path), "layout", keepLayout, "stderr", stderr.String())
		return "", fmt.Errorf("pdftotext %s: %w", filepath.Base(path), err)
	}
	return out.String(), nil
}
