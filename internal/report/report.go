// Package report renders drift findings, baseline comparisons, and run
// history in the output formats the CLI exposes: table, json, csv, and
// markdown.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// headerLabels returns the display labels for a set of result columns. The
// detector's property labels win when they cover every column; otherwise the
// column names are prettified.
func headerLabels(properties, keys []string) []string {
	if len(properties) == len(keys) && len(properties) > 0 {
		return properties
	}
	labels := make([]string, len(keys))
	for i, key := range keys {
		labels[i] = titleCaser.String(strings.ReplaceAll(key, "_", " "))
	}
	return labels
}

// formatValue renders one original insight value for tabular output.
// Sequences join on the same delimiter the normalizer uses, so the cell
// matches the row stored in the baseline.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []string:
		return strings.Join(val, "|")
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = fmt.Sprintf("%v", e)
		}
		return strings.Join(parts, "|")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
