package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List configured categories and their tables",
	RunE:  runTables,
}

func runTables(cmd *cobra.Command, args []string) error {
	for _, category := range cfg.CategoryNames() {
		cat, err := cfg.Category(category)
		if err != nil {
			return err
		}
		fmt.Printf("%s:\n", category)
		for _, t := range cat.Tables {
			fmt.Printf("  %s (key: %s)\n", t.Name, strings.Join(t.KeyColumns, ", "))
		}
	}
	return nil
}
