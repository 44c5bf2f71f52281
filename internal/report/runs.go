package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/baseline-labs/driftwatch/internal/history"
)

var runColumns = []string{"ID", "Environment", "Mode", "Status", "Started", "Detectors", "Drifted", "Duration"}

// RenderRuns writes recorded runs, newest first, in the given format.
func RenderRuns(w io.Writer, runs []*history.Run, format string) error {
	switch format {
	case "json":
		return renderRunsJSON(w, runs)
	case "csv":
		return renderRunsCSV(w, runs)
	case "md", "markdown":
		return renderRunsMarkdown(w, runs)
	default:
		return renderRunsTable(w, runs)
	}
}

func runCells(run *history.Run) []string {
	return []string{
		shortID(run.ID),
		run.Environment,
		run.Mode,
		string(run.Status),
		run.StartedAt.Format(time.RFC3339),
		fmt.Sprintf("%d", run.Detectors),
		fmt.Sprintf("%d", run.Drifted),
		runDuration(run),
	}
}

// shortID keeps run listings readable; full IDs stay available via json.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run *history.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}

func renderRunsTable(w io.Writer, runs []*history.Run) error {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No recorded runs.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(runColumns))
	for i, col := range runColumns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, run := range runs {
		cells := runCells(run)
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d runs)\n", len(runs))
	return nil
}

type runOutput struct {
	ID          string     `json:"id"`
	Environment string     `json:"environment"`
	Mode        string     `json:"mode"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Detectors   int        `json:"detectors"`
	Drifted     int        `json:"drifted"`
	Error       string     `json:"error,omitempty"`
}

func renderRunsJSON(w io.Writer, runs []*history.Run) error {
	out := make([]runOutput, 0, len(runs))
	for _, run := range runs {
		out = append(out, runOutput{
			ID:          run.ID,
			Environment: run.Environment,
			Mode:        run.Mode,
			Status:      string(run.Status),
			StartedAt:   run.StartedAt,
			CompletedAt: run.CompletedAt,
			Detectors:   run.Detectors,
			Drifted:     run.Drifted,
			Error:       run.Error,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderRunsCSV(w io.Writer, runs []*history.Run) error {
	cols := make([]string, len(runColumns))
	for i, col := range runColumns {
		cols[i] = strings.ToLower(col)
	}
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, run := range runs {
		cells := runCells(run)
		for i, c := range cells {
			cells[i] = escapeCSV(c)
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, ","))
	}
	return nil
}

func renderRunsMarkdown(w io.Writer, runs []*history.Run) error {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No recorded runs.")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(runColumns, " | "))
	seps := make([]string, len(runColumns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, run := range runs {
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(runCells(run), " | "))
	}
	return nil
}
