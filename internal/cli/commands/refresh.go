package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/baseline-labs/driftwatch/internal/cli/output"
	"github.com/baseline-labs/driftwatch/internal/runner"
)

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand() *cobra.Command {
	var selectFlag string

	cmd := &cobra.Command{
		Use:   "refresh [detector...]",
		Short: "Rebuild detector baselines from the current graph state",
		Long: `Replace every detector's baseline with the rows its validation query
returns right now, and rewrite the detector documents. Positional arguments
restrict the refresh to the named detectors.

Use this after an intentional infrastructure change, when the current graph
state is the new normal. Rows that vanished from the graph are dropped from
the baselines; refresh does not preserve old expectations the way
'run --update' does.`,
		Example: `  # Rebuild all baselines
  driftwatch refresh

  # Rebuild a single detector's baseline
  driftwatch refresh expired-snapshots`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd, selectFlag, args)
		},
	}

	cmd.Flags().StringVarP(&selectFlag, "select", "s", "", "Comma-separated list of detector names to refresh")

	return cmd
}

func runRefresh(cmd *cobra.Command, selectFlag string, args []string) error {
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

	store, err := cmdCtx.OpenHistory()
	if err != nil {
		r.Warning(fmt.Sprintf("run history disabled: %v", err))
		store = nil
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	result, err := cmdCtx.NewRunner(sess, store).RefreshDir(ctx, cmdCtx.Cfg.DetectorsDir, runner.Options{
		Environment: cmdCtx.Cfg.Environment,
		Select:      append(splitSelect(selectFlag), args...),
	})
	if err != nil {
		return err
	}

	for _, fe := range result.Errors {
		r.Warning(fmt.Sprintf("skipped %s: %s", fe.Path, fe.Message))
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(refreshOutput{
			Refreshed: len(result.Saved),
			Saved:     relPaths(result.Saved, cmdCtx.Cfg.DetectorsDir),
			Skipped:   len(result.Errors),
		})
	}

	for _, p := range result.Saved {
		r.StatusLine(relPath(p, cmdCtx.Cfg.DetectorsDir), "success", "")
	}
	r.Println("")
	r.Success(fmt.Sprintf("Refreshed %d detector baselines", len(result.Saved)))

	return nil
}

type refreshOutput struct {
	Refreshed int      `json:"refreshed"`
	Saved     []string `json:"saved"`
	Skipped   int      `json:"skipped"`
}

// relPath shortens p for display when it sits under baseDir.
func relPath(p, baseDir string) string {
	if rel, err := filepath.Rel(baseDir, p); err == nil && !filepath.IsAbs(rel) && rel != "" && rel[0] != '.' {
		return rel
	}
	return p
}

func relPaths(paths []string, baseDir string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, relPath(p, baseDir))
	}
	return out
}
