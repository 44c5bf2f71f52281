package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baseline-labs/driftwatch/internal/report"
	"github.com/baseline-labs/driftwatch/internal/runner"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List detectors and their baselines",
		Long: `List every detector document in the detectors directory with its type,
reported columns, and baseline size. The graph is not contacted.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, csv`,
		Example: `  # List all detectors (auto-detect output format)
  driftwatch list

  # List detectors as JSON
  driftwatch list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if err := cmdCtx.Cfg.ValidateDirectories(); err != nil {
		return err
	}

	items, fileErrors, err := runner.LoadAll(cmdCtx.Cfg.DetectorsDir)
	if err != nil {
		return err
	}
	for _, fe := range fileErrors {
		r.Warning(fmt.Sprintf("skipped %s: %s", fe.Path, fe.Message))
	}

	return report.RenderDetectors(r.Writer(), items, cmdCtx.Cfg.DetectorsDir, r.Format())
}
