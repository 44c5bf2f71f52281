package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/baseline-labs/driftwatch/internal/runner"
)

// RenderComparison writes the baseline delta between two saved states.
// Added rows are accepted only by the end state, missing rows only by the
// start state.
func RenderComparison(w io.Writer, cmp *runner.Comparison, format string) error {
	switch format {
	case "json":
		return renderComparisonJSON(w, cmp)
	case "csv":
		return renderComparisonCSV(w, cmp)
	case "md", "markdown":
		return renderComparisonMarkdown(w, cmp)
	default:
		return renderComparisonTable(w, cmp)
	}
}

// comparisonLabels builds the header: a status column plus the row columns.
// Saved states carry no column names, so property labels or positional
// names are all there is.
func comparisonLabels(cmp *runner.Comparison) []string {
	width := 0
	for _, row := range cmp.Added {
		if len(row) > width {
			width = len(row)
		}
	}
	for _, row := range cmp.Missing {
		if len(row) > width {
			width = len(row)
		}
	}

	labels := make([]string, width)
	for i := range labels {
		if i < len(cmp.Properties) {
			labels[i] = cmp.Properties[i]
		} else {
			labels[i] = fmt.Sprintf("Column %d", i+1)
		}
	}
	return append([]string{"Status"}, labels...)
}

func comparisonRows(cmp *runner.Comparison) [][]string {
	rows := make([][]string, 0, len(cmp.Added)+len(cmp.Missing))
	for _, row := range cmp.Added {
		rows = append(rows, append([]string{"added"}, row...))
	}
	for _, row := range cmp.Missing {
		rows = append(rows, append([]string{"missing"}, row...))
	}
	return rows
}

func renderComparisonTable(w io.Writer, cmp *runner.Comparison) error {
	_, _ = fmt.Fprintf(w, "Detector: %s\n", cmp.Name)
	if cmp.Empty() {
		_, _ = fmt.Fprintln(w, "States accept the same rows.")
		return nil
	}

	labels := comparisonLabels(cmp)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(labels))
	for i, label := range labels {
		headerRow[i] = label
	}
	t.AppendHeader(headerRow)

	for _, row := range comparisonRows(cmp) {
		tr := make(table.Row, len(labels))
		for i := range labels {
			if i < len(row) {
				tr[i] = row[i]
			} else {
				tr[i] = ""
			}
		}
		t.AppendRow(tr)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d added, %d missing)\n", len(cmp.Added), len(cmp.Missing))
	return nil
}

type comparisonOutput struct {
	Name      string     `json:"name"`
	StartPath string     `json:"start_path"`
	EndPath   string     `json:"end_path"`
	Added     [][]string `json:"added"`
	Missing   [][]string `json:"missing"`
}

func renderComparisonJSON(w io.Writer, cmp *runner.Comparison) error {
	out := comparisonOutput{
		Name:      cmp.Name,
		StartPath: cmp.StartPath,
		EndPath:   cmp.EndPath,
		Added:     cmp.Added,
		Missing:   cmp.Missing,
	}
	if out.Added == nil {
		out.Added = [][]string{}
	}
	if out.Missing == nil {
		out.Missing = [][]string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderComparisonCSV(w io.Writer, cmp *runner.Comparison) error {
	labels := comparisonLabels(cmp)
	for i, label := range labels {
		labels[i] = escapeCSV(strings.ToLower(strings.ReplaceAll(label, " ", "_")))
	}
	_, _ = fmt.Fprintln(w, strings.Join(labels, ","))

	for _, row := range comparisonRows(cmp) {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = escapeCSV(v)
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderComparisonMarkdown(w io.Writer, cmp *runner.Comparison) error {
	_, _ = fmt.Fprintf(w, "## %s\n\n", cmp.Name)
	if cmp.Empty() {
		_, _ = fmt.Fprintln(w, "States accept the same rows.")
		return nil
	}

	labels := comparisonLabels(cmp)
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(labels, " | "))
	seps := make([]string, len(labels))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range comparisonRows(cmp) {
		padded := make([]string, len(labels))
		copy(padded, row)
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(padded, " | "))
	}
	return nil
}
