package client

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTable writes rows under upper-cased column headers, separated by two
// spaces.
func PrintTable(w io.Writer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i := range columns {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	line := func(cells []string) {
		var b strings.Builder
		for i := range columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(columns)-1 {
				b.WriteString(cell)
			} else {
				fmt.Fprintf(&b, "%-*s", widths[i], cell)
			}
		}
		_, _ = fmt.Fprintln(w, b.String())
	}

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	line(header)
	for _, row := range rows {
		line(row)
	}
}

// PrintDetail writes one "key:  value" line per field in key order.
func PrintDetail(w io.Writer, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	width := 0
	for k := range fields {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "%s:%s  %s\n", k, strings.Repeat(" ", width-len(k)), format(fields[k]))
	}
}

// ExtractField renders data[key] for display. Nested values are JSON.
func ExtractField(data map[string]any, key string) string {
	return format(data[key])
}

// ExtractRows renders the objects of a list response's data array as rows.
func ExtractRows(data map[string]any, columns []string) [][]string {
	items, ok := data["data"].([]any)
	if !ok {
		return nil
	}
	var rows [][]string
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, Row(obj, columns))
	}
	return rows
}

// Row renders the columns of one object.
func Row(obj map[string]any, columns []string) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i] = ExtractField(obj, c)
	}
	return row
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case map[string]any, []any:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", x)
	}
}
