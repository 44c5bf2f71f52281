package runner

import (
	"fmt"

	"github.com/baseline-labs/driftwatch/pkg/drift"
)

// Comparison is the baseline delta between two saved states of the same
// detector.
type Comparison struct {
	Name       string
	Properties []string
	StartPath  string
	EndPath    string
	Added      [][]string // rows only the end state accepts
	Missing    [][]string // rows only the start state accepts
}

// Empty reports whether the two states accept the same rows.
func (c *Comparison) Empty() bool {
	return len(c.Added) == 0 && len(c.Missing) == 0
}

// CompareFiles diffs two saved documents of the same detector. The documents
// must share a validation query; states of different queries have no
// comparable rows.
func CompareFiles(startPath, endPath string) (*Comparison, error) {
	start, err := drift.LoadFile(startPath)
	if err != nil {
		return nil, err
	}
	end, err := drift.LoadFile(endPath)
	if err != nil {
		return nil, err
	}
	if start.Query() != end.Query() {
		return nil, fmt.Errorf("detector documents %s and %s do not share a validation query", startPath, endPath)
	}

	added, missing := start.Baseline().Diff(end.Baseline())
	return &Comparison{
		Name:       end.Name(),
		Properties: end.Properties(),
		StartPath:  startPath,
		EndPath:    endPath,
		Added:      added,
		Missing:    missing,
	}, nil
}
