package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabinet-go/cabinet/internal/extract"
	"github.com/cabinet-go/cabinet/internal/ingest"
)

var ingestFlags struct {
	collection string
	doctype    string
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>...",
	Short: "Classify PDF files and store them as documents",
	Long: `Ingest runs pdftotext over each file, extracts the attributes the
document type's rules declare, and stores the document with its rendered
label and file name. Files that fail classification are stored unparsed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestFlags.collection, "collection", "", "Collection to file under (defaults to the configured inbox collection)")
	f.StringVar(&ingestFlags.doctype, "type", "", "Document type to classify as (defaults to the configured inbox type)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	collection := ingestFlags.collection
	if collection == "" {
		collection = a.cfg.Ingest.Collection
	}
	doctype := ingestFlags.doctype
	if doctype == "" {
		doctype = a.cfg.Ingest.DefaultType
	}

	svc := ingest.NewService(a.registry, extract.NewPDFToText(a.logger), a.store.Documents(), a.logger)
	for _, path := range args {
		doc, err := svc.IngestFile(ctx, path, collection, doctype)
		if err != nil {
			return err
		}
		dt, err := a.registry.Lookup(collection, doctype)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", path, dt.DisplayLabel(doc.Attributes))
	}
	return nil
}
