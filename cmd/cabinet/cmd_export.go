package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabinet-go/cabinet/internal/export"
)

var exportFlags struct {
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export <collection>",
	Short: "Export a collection's documents to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "Output file (default <collection>.xlsx)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	collection := args[0]
	out := exportFlags.output
	if out == "" {
		out = collection + ".xlsx"
	}

	svc := export.NewService(a.store.Documents(), a.logger)
	data, err := svc.ExportCollectionXLSX(ctx, collection)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}
