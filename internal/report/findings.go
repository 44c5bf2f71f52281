package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/baseline-labs/driftwatch/internal/runner"
)

// findingGroup holds one detector's findings; columns are uniform within a
// group but differ between detectors.
type findingGroup struct {
	detector   string
	properties []string
	keys       []string
	findings   []runner.Finding
}

func groupFindings(findings []runner.Finding) []findingGroup {
	var groups []findingGroup
	index := map[string]int{}
	for _, f := range findings {
		i, ok := index[f.Detector]
		if !ok {
			i = len(groups)
			index[f.Detector] = i
			groups = append(groups, findingGroup{
				detector:   f.Detector,
				properties: f.Properties,
				keys:       f.Insight.Keys,
			})
		}
		groups[i].findings = append(groups[i].findings, f)
	}
	return groups
}

// RenderFindings writes the drifted rows in the given format.
func RenderFindings(w io.Writer, findings []runner.Finding, format string) error {
	switch format {
	case "json":
		return renderFindingsJSON(w, findings)
	case "csv":
		return renderFindingsCSV(w, findings)
	case "md", "markdown":
		return renderFindingsMarkdown(w, findings)
	default:
		return renderFindingsTable(w, findings)
	}
}

func renderFindingsTable(w io.Writer, findings []runner.Finding) error {
	if len(findings) == 0 {
		_, _ = fmt.Fprintln(w, "No drift detected.")
		return nil
	}

	for _, g := range groupFindings(findings) {
		_, _ = fmt.Fprintf(w, "Detector: %s\n", g.detector)

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)

		labels := headerLabels(g.properties, g.keys)
		headerRow := make(table.Row, len(labels))
		for i, label := range labels {
			headerRow[i] = label
		}
		t.AppendHeader(headerRow)

		for _, f := range g.findings {
			row := make(table.Row, len(f.Insight.Values))
			for i, v := range f.Insight.Values {
				row[i] = formatValue(v)
			}
			t.AppendRow(row)
		}

		t.Render()
		_, _ = fmt.Fprintf(w, "(%d drifted rows)\n\n", len(g.findings))
	}
	return nil
}

type findingOutput struct {
	Detector string         `json:"detector"`
	Path     string         `json:"path"`
	Row      map[string]any `json:"row"`
}

func renderFindingsJSON(w io.Writer, findings []runner.Finding) error {
	out := make([]findingOutput, 0, len(findings))
	for _, f := range findings {
		out = append(out, findingOutput{
			Detector: f.Detector,
			Path:     f.Path,
			Row:      f.Insight.AsMap(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderFindingsCSV(w io.Writer, findings []runner.Finding) error {
	for i, g := range groupFindings(findings) {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		cols := append([]string{"detector"}, g.keys...)
		_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

		for _, f := range g.findings {
			values := make([]string, 0, len(f.Insight.Values)+1)
			values = append(values, escapeCSV(f.Detector))
			for _, v := range f.Insight.Values {
				values = append(values, escapeCSV(formatValue(v)))
			}
			_, _ = fmt.Fprintln(w, strings.Join(values, ","))
		}
	}
	return nil
}

func renderFindingsMarkdown(w io.Writer, findings []runner.Finding) error {
	if len(findings) == 0 {
		_, _ = fmt.Fprintln(w, "No drift detected.")
		return nil
	}

	for _, g := range groupFindings(findings) {
		_, _ = fmt.Fprintf(w, "## %s\n\n", g.detector)

		labels := headerLabels(g.properties, g.keys)
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(labels, " | "))
		seps := make([]string, len(labels))
		for i := range seps {
			seps[i] = "---"
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

		for _, f := range g.findings {
			values := make([]string, len(f.Insight.Values))
			for i, v := range f.Insight.Values {
				values[i] = formatValue(v)
			}
			_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
		}
		_, _ = fmt.Fprintln(w)
	}
	return nil
}
