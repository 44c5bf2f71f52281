package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baseline-labs/driftwatch/internal/cli/output"
	"github.com/baseline-labs/driftwatch/internal/report"
	"github.com/baseline-labs/driftwatch/internal/runner"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Update bool
	Select string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [detector...]",
		Short: "Run drift detection against the asset graph",
		Long: `Execute every detector in the detectors directory and report rows the
accepted baselines do not cover. Positional arguments restrict the run to
the named detectors.

By default drifted rows are only reported. Use --update to absorb them into
the baselines and rewrite the detector documents, so the next run is quiet.`,
		Example: `  # Report drift for all detectors
  driftwatch run

  # Run specific detectors
  driftwatch run expired-snapshots public-buckets

  # Accept everything currently drifting into the baselines
  driftwatch run --update

  # Machine-readable output for CI
  driftwatch run --output json`,
		Aliases: []string{"detect"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "Absorb drifted rows into the baselines and save the documents")
	cmd.Flags().StringVarP(&opts.Select, "select", "s", "", "Comma-separated list of detector names to run")

	return cmd
}

func runDetect(cmd *cobra.Command, opts *RunOptions, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if err := cmdCtx.Cfg.ValidateDirectories(); err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, err := cmdCtx.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close(ctx) }()

	// A broken history store should not block detection.
	store, err := cmdCtx.OpenHistory()
	if err != nil {
		r.Warning(fmt.Sprintf("run history disabled: %v", err))
		store = nil
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	result, err := cmdCtx.NewRunner(sess, store).DetectDir(ctx, cmdCtx.Cfg.DetectorsDir, runner.Options{
		Update:      opts.Update,
		Environment: cmdCtx.Cfg.Environment,
		Select:      append(splitSelect(opts.Select), args...),
	})
	if err != nil {
		// Findings collected before the failure still get reported
		if result != nil && len(result.Findings) > 0 {
			_ = report.RenderFindings(r.Writer(), result.Findings, r.Format())
		}
		return err
	}

	if err := report.RenderFindings(r.Writer(), result.Findings, r.Format()); err != nil {
		return err
	}
	for _, fe := range result.Errors {
		r.Warning(fmt.Sprintf("skipped %s: %s", fe.Path, fe.Message))
	}

	if r.EffectiveMode() != output.ModeJSON {
		r.Println(result.Summary())
	}

	return nil
}

// splitSelect parses a comma-separated detector name list.
func splitSelect(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
