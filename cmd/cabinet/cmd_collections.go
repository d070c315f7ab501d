package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List installed collections and their document types",
	Args:  cobra.NoArgs,
	RunE:  runCollections,
}

func runCollections(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	names := a.registry.Collections()
	sort.Strings(names)
	for _, name := range names {
		c, err := a.registry.Collection(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", name, c.PublicName)
		types := c.DocumentTypes()
		typeNames := make([]string, 0, len(types))
		for tn := range types {
			typeNames = append(typeNames, tn)
		}
		sort.Strings(typeNames)
		for _, tn := range typeNames {
			dt := types[tn]
			kind := "label only"
			if dt.Matcher != nil {
				kind = "matches transactions"
			}
			fmt.Printf("  %-12s %-24s %s\n", tn, dt.DefinitionName(), kind)
		}
	}
	return nil
}
