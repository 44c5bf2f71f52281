package commands

import (
	"github.com/spf13/cobra"

	"github.com/baseline-labs/driftwatch/internal/report"
	"github.com/baseline-labs/driftwatch/internal/runner"
)

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <start-file> <end-file>",
		Short: "Compare two saved states of one detector",
		Long: `Diff the expectations of two detector documents captured at different
times, for example a baseline committed last quarter against today's.

Both documents must share the same validation query; comparing baselines of
different queries would be meaningless. The report lists rows the end state
added and rows it no longer accepts.`,
		Example: `  # What changed between two snapshots of a detector?
  driftwatch compare states/2026-01/expired-snapshots.json states/2026-02/expired-snapshots.json

  # Diff as JSON
  driftwatch compare old.yaml new.yaml --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			cmp, err := runner.CompareFiles(args[0], args[1])
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			return report.RenderComparison(r.Writer(), cmp, r.Format())
		},
	}
}
