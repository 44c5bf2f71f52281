package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/baseline-labs/driftwatch/internal/runner"
)

var detectorColumns = []string{"Name", "Type", "Columns", "Baseline", "File"}

// RenderDetectors writes the detector inventory in the given format.
// Paths under baseDir are shortened for display.
func RenderDetectors(w io.Writer, items []runner.Loaded, baseDir, format string) error {
	switch format {
	case "json":
		return renderDetectorsJSON(w, items)
	case "csv":
		return renderDetectorsCSV(w, items, baseDir)
	case "md", "markdown":
		return renderDetectorsMarkdown(w, items, baseDir)
	default:
		return renderDetectorsTable(w, items, baseDir)
	}
}

func detectorCells(item runner.Loaded, baseDir string) []string {
	d := item.Detector
	return []string{
		d.Name(),
		d.Type().String(),
		strings.Join(d.Properties(), ", "),
		strconv.Itoa(d.Baseline().Len()),
		displayPath(item.Path, baseDir),
	}
}

// displayPath shortens p when it sits under baseDir.
func displayPath(p, baseDir string) string {
	if baseDir == "" {
		return p
	}
	if rel, err := filepath.Rel(baseDir, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}

func renderDetectorsTable(w io.Writer, items []runner.Loaded, baseDir string) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "No detectors found.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(detectorColumns))
	for i, col := range detectorColumns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, item := range items {
		cells := detectorCells(item, baseDir)
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d detectors)\n", len(items))
	return nil
}

type detectorOutput struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Path         string   `json:"path"`
	Query        string   `json:"validation_query"`
	Properties   []string `json:"properties,omitempty"`
	BaselineRows int      `json:"baseline_rows"`
}

func renderDetectorsJSON(w io.Writer, items []runner.Loaded) error {
	out := make([]detectorOutput, 0, len(items))
	for _, item := range items {
		d := item.Detector
		out = append(out, detectorOutput{
			Name:         d.Name(),
			Type:         d.Type().String(),
			Path:         item.Path,
			Query:        d.Query(),
			Properties:   d.Properties(),
			BaselineRows: d.Baseline().Len(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderDetectorsCSV(w io.Writer, items []runner.Loaded, baseDir string) error {
	cols := make([]string, len(detectorColumns))
	for i, col := range detectorColumns {
		cols[i] = strings.ToLower(col)
	}
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, item := range items {
		cells := detectorCells(item, baseDir)
		for i, c := range cells {
			cells[i] = escapeCSV(c)
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, ","))
	}
	return nil
}

func renderDetectorsMarkdown(w io.Writer, items []runner.Loaded, baseDir string) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "No detectors found.")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(detectorColumns, " | "))
	seps := make([]string, len(detectorColumns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, item := range items {
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(detectorCells(item, baseDir), " | "))
	}
	return nil
}
