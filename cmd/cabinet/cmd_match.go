package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabinet-go/cabinet/internal/attr"
	"github.com/cabinet-go/cabinet/internal/reconcile"
)

var matchCmd = &cobra.Command{
	Use:   "match <collection>",
	Short: "Pair stored documents with bank transactions",
	Long: `Match looks up, for every stored document whose type declares a
matcher, the bank transactions inside the document's relevant date window
and reports the first one that matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	collection := args[0]
	docs, err := a.store.Documents().ListByCollection(ctx, collection)
	if err != nil {
		return err
	}

	svc := reconcile.New(a.logger)
	matched := 0
	for _, d := range docs {
		dt, err := a.registry.Lookup(d.Collection, d.Type)
		if err != nil {
			continue
		}
		window, ok := dt.RelevantDateRange(d.Attributes)
		if !ok {
			continue
		}
		feed, err := a.store.Transactions().ListBetween(ctx, window.Start, window.End)
		if err != nil {
			return err
		}
		tx, ok := svc.BestTransaction(dt, d.Attributes, feed)
		if !ok {
			fmt.Printf("%-40s  no matching transaction\n", d.Label)
			continue
		}
		fmt.Printf("%-40s  %s  %s  %s\n",
			d.Label, tx.Date.Format("2006-01-02"), attr.FormatAmount(tx.Amount), tx.Name)
		matched++
	}
	fmt.Printf("%d/%d documents matched\n", matched, len(docs))
	return nil
}
