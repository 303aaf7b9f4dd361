package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"ss12000-mock/pkg/cli/client"
)

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}

// tableColumns are shown, in this order, when at least one record has them.
var tableColumns = []string{
	"id", "name", "display_name", "type", "civic_no", "resource_type", "resource_id",
	"start_date", "end_date", "expires", "modified",
}

func columnsFor(items []map[string]any) []string {
	var cols []string
	for _, c := range tableColumns {
		if slices.ContainsFunc(items, func(it map[string]any) bool { _, ok := it[c]; return ok }) {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		cols = []string{"id"}
	}
	return cols
}

// printItems writes records as a table, or v as JSON.
func printItems(cmd *cobra.Command, w io.Writer, items []map[string]any, v any) error {
	if getOutputFormat(cmd) == "json" {
		return client.PrintJSON(w, v)
	}
	cols := columnsFor(items)
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = client.Row(it, cols)
	}
	client.PrintTable(w, cols, rows)
	return nil
}
