// Package history persists drift run history in a local SQLite database.
// Every engine invocation records one run plus the findings it produced, so
// operators can answer "when did this row first drift" without re-running
// queries against the graph.
package history

import "time"

// RunStatus represents the state of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run modes. Report leaves baselines alone, update absorbs reported rows,
// refresh replaces baselines wholesale.
const (
	ModeReport  = "report"
	ModeUpdate  = "update"
	ModeRefresh = "refresh"
)

// Run is one recorded engine invocation.
type Run struct {
	ID          string
	Environment string
	Mode        string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Detectors   int
	Drifted     int
	Error       string
}

// Finding is one drifted row recorded under a run.
type Finding struct {
	ID        string
	RunID     string
	Detector  string
	Columns   []string
	Values    []any
	CreatedAt time.Time
}
