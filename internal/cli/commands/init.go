package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/baseline-labs/driftwatch/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new driftwatch project",
		Long: `Initialize a new driftwatch project with default directory structure and configuration.

This creates:
  - detectors/ directory with a sample detector document
  - driftwatch.yaml configuration file
  - .gitignore covering the local history database

Edit driftwatch.yaml to point at your asset graph, then accept the current
graph state as the first baseline with 'driftwatch refresh'.`,
		Example: `  # Initialize in current directory
  driftwatch init

  # Initialize in a new directory
  driftwatch init my-baselines

  # Force overwrite existing config
  driftwatch init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "driftwatch.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("driftwatch.yaml already exists. Use --force to overwrite")
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Detectors")
	for _, f := range groups["detectors"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("driftwatch project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Point driftwatch.yaml at your asset graph")
	r.Println("  2. Add detector documents to detectors/")
	r.Println("  3. Run 'driftwatch refresh' to capture the first baselines")
	r.Println("  4. Run 'driftwatch run' to detect drift")

	return nil
}
