package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baseline-labs/driftwatch/internal/history"
	"github.com/baseline-labs/driftwatch/internal/report"
	"github.com/baseline-labs/driftwatch/internal/runner"
	"github.com/baseline-labs/driftwatch/pkg/drift"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int  // Maximum runs to list
	All   bool // Ignore the environment filter
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded drift runs",
		Long: `List past engine runs from the local history database, newest first.
Runs are filtered to the current environment unless --all is given.

Use 'driftwatch history findings <run-id>' to see the drifted rows a
particular run reported.`,
		Example: `  # Last 20 runs in the current environment
  driftwatch history

  # Last 5 runs across every environment
  driftwatch history --all --limit 5

  # Drifted rows from a specific run
  driftwatch history findings 1a2b3c4d`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Show runs from every environment")

	cmd.AddCommand(newHistoryFindingsCommand())

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := openHistoryStore(cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	env := cmdCtx.Cfg.Environment
	if opts.All {
		env = ""
	}
	runs, err := store.ListRuns(env, opts.Limit)
	if err != nil {
		return err
	}

	return report.RenderRuns(r.Writer(), runs, r.Format())
}

func newHistoryFindingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "findings <run-id>",
		Short: "Show the drifted rows recorded under a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryFindings(cmd, args[0])
		},
	}
}

func runHistoryFindings(cmd *cobra.Command, runID string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := openHistoryStore(cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if _, err := store.GetRun(runID); err != nil {
		return err
	}
	recorded, err := store.ListFindings(runID)
	if err != nil {
		return err
	}

	findings := make([]runner.Finding, 0, len(recorded))
	for _, f := range recorded {
		findings = append(findings, runner.Finding{
			Detector: f.Detector,
			Insight:  &drift.Insight{Keys: f.Columns, Values: f.Values},
		})
	}

	return report.RenderFindings(r.Writer(), findings, r.Format())
}

func openHistoryStore(cmdCtx *CommandContext) (*history.Store, error) {
	store, err := cmdCtx.OpenHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("run history is disabled: history_path is empty")
	}
	return store, nil
}
