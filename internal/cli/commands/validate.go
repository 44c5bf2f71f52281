package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baseline-labs/driftwatch/internal/cli/output"
	"github.com/baseline-labs/driftwatch/internal/runner"
	"github.com/baseline-labs/driftwatch/pkg/drift"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate detector documents without touching the graph",
		Long: `Check every detector document in the detectors directory against the
strict schema: required fields present, no unknown fields, no trailing
content. Nothing is executed; the graph is not contacted.

Run this in CI to catch malformed documents before they silently skip
at detection time.`,
		Example: `  # Validate all detector documents
  driftwatch validate

  # Machine-readable results
  driftwatch validate --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd)
		},
	}
}

type validateResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if err := cmdCtx.Cfg.ValidateDirectories(); err != nil {
		return err
	}

	paths, err := runner.Discover(cmdCtx.Cfg.DetectorsDir)
	if err != nil {
		return err
	}

	results := make([]validateResult, 0, len(paths))
	failed := 0
	for _, path := range paths {
		name := relPath(path, cmdCtx.Cfg.DetectorsDir)
		if _, loadErr := drift.LoadFile(path); loadErr != nil {
			failed++
			results = append(results, validateResult{File: name, Error: loadErr.Error()})
			continue
		}
		results = append(results, validateResult{File: name, Valid: true})
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Valid {
				r.StatusLine(res.File, "success", "")
			} else {
				r.StatusLine(res.File, "failed", res.Error)
			}
		}
		if failed == 0 {
			r.Success(fmt.Sprintf("All %d detector documents are valid", len(paths)))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d detector documents failed validation", failed, len(paths))
	}
	return nil
}
