package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cabinet-go/cabinet/collections"
	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/extract"
	"github.com/cabinet-go/cabinet/internal/fetch"
)

var fetchFlags struct {
	outDir string
	all    bool
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [collection]...",
	Short: "Run fetch scripts to download new documents",
	Long: `Fetch runs each named collection's fetch script against its web source,
skipping documents already stored, and files what it downloads. With --all,
every collection that has a script is fetched. Credentials come from the
"credentials" section of the config file.`,
	RunE: runFetch,
}

func init() {
	f := fetchCmd.Flags()
	f.StringVar(&fetchFlags.outDir, "out", ".", "Directory to write downloaded files into")
	f.BoolVar(&fetchFlags.all, "all", false, "Fetch every collection with a script")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if len(args) == 0 && !fetchFlags.all {
		return fmt.Errorf("name at least one collection, or pass --all")
	}
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	scripts := collections.Scripts()
	names := args
	if fetchFlags.all {
		names = names[:0]
		for name := range scripts {
			names = append(names, name)
		}
	}

	var tasks []*fetch.Task
	for _, name := range names {
		script, ok := scripts[name]
		if !ok {
			return fmt.Errorf("collection %q has no fetch script", name)
		}
		docs, err := a.store.Documents().ListByCollection(ctx, name)
		if err != nil {
			return err
		}
		existing := make([]attr.Map, 0, len(docs))
		for _, d := range docs {
			attrs := d.Attributes
			if attrs == nil {
				attrs = attr.Map{}
			}
			if d.Reference != "" {
				attrs["reference"] = d.Reference
			}
			existing = append(existing, attrs)
		}
		tasks = append(tasks, fetch.NewTask(name, script, existing))
	}

	transport, err := fetch.NewHTTPTransport(a.cfg.Fetch.Timeout, a.cfg.Fetch.UserAgent, a.logger)
	if err != nil {
		return err
	}
	runner := fetch.NewRunner(transport, a.registry,
		extract.NewPDFToText(a.logger), a.cfg.Credentials, a.logger)
	runner.MaxConcurrent = a.cfg.Fetch.MaxConcurrent

	completed := runner.RunAll(ctx, tasks)

	saved := 0
	for _, t := range tasks {
		if err := t.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", t.Collection, err)
		}
		for _, doc := range t.Documents() {
			dt, err := a.registry.Lookup(doc.CollectionName, doc.TypeName)
			if err != nil {
				return err
			}
			name := dt.FileName(doc.Attributes)
			if name == "" {
				name = doc.Reference
			}
			path := filepath.Join(fetchFlags.outDir, name)
			if err := os.WriteFile(path, doc.Payload, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			doc.FilePath = path
			if err := a.store.Documents().Save(ctx, doc, dt.DisplayLabel(doc.Attributes), name); err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", t.Collection, path)
			saved++
		}
	}
	fmt.Printf("%d/%d collections fetched, %d new documents\n", completed, len(tasks), saved)
	return nil
}
