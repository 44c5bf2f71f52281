// Package cli provides the command-line interface for driftwatch.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/baseline-labs/driftwatch/internal/cli/commands"
	"github.com/baseline-labs/driftwatch/internal/cli/config"
	"github.com/baseline-labs/driftwatch/internal/cli/output"
)

var (
	cfgFile string
	envFlag string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "driftwatch",
		Short: "driftwatch - Baseline drift detection for asset graphs",
		Long: `driftwatch runs validation queries against a property graph of your
infrastructure assets and compares the results to accepted baselines.

Rows that are not in the baseline are reported as drift. Baselines live in
versioned detector documents, so every accepted change is reviewable.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration with optional environment override and CLI flags
			var err error
			cfg, err = config.LoadConfigWithEnvironment(cfgFile, envFlag, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Interactive password prompt replaces whatever the config resolved
			if prompt, _ := cmd.Root().PersistentFlags().GetBool("graph-password-prompt"); prompt && cfg.Graph != nil {
				fmt.Fprint(os.Stderr, "Graph password: ")
				pw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				cfg.Graph.Password = string(pw)
			}

			// Store config in context
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			// Create and store renderer based on output mode
			mode := output.Mode(cfg.OutputFormat)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			ctx = context.WithValue(ctx, rendererKey{}, renderer)

			// Create and store logger; detection progress goes to stderr
			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			if cfg.Quiet {
				level = slog.LevelError
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
				if envFlag != "" {
					fmt.Fprintf(os.Stderr, "Using environment: %s\n", envFlag)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Baseline drift detection for asset graphs
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./driftwatch.yaml)")
	rootCmd.PersistentFlags().StringVarP(&envFlag, "environment", "e", "", "Environment to use (e.g., dev, staging, prod)")
	rootCmd.PersistentFlags().String("project-dir", "", "Path to the project root")
	rootCmd.PersistentFlags().String("detectors-dir", "", "Path to detector documents directory")
	rootCmd.PersistentFlags().String("history", "", "Path to run history database (:memory: for throwaway)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only report errors")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json|csv)")
	rootCmd.PersistentFlags().String("graph-type", "", "Graph driver (neo4j, bolt, postgres, sqlite, duckdb)")
	rootCmd.PersistentFlags().String("graph-uri", "", "Graph connection URI (e.g., bolt://localhost:7687)")
	rootCmd.PersistentFlags().String("graph-host", "", "Graph host")
	rootCmd.PersistentFlags().Int("graph-port", 0, "Graph port")
	rootCmd.PersistentFlags().String("graph-database", "", "Graph database name")
	rootCmd.PersistentFlags().String("graph-user", "", "Graph username")
	rootCmd.PersistentFlags().String("graph-password-env", "", "Environment variable holding the graph password")
	rootCmd.PersistentFlags().Bool("graph-password-prompt", false, "Prompt for the graph password instead of reading config")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for environment flag
	_ = rootCmd.RegisterFlagCompletionFunc("environment", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		// Return common environment names
		return []string{"dev", "staging", "prod"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewRefreshCommand())
	rootCmd.AddCommand(commands.NewCompareCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		DetectorsDir: config.DefaultDetectorsDir,
		HistoryPath:  config.DefaultHistoryFile,
		Environment:  config.DefaultEnv,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	// Return default renderer if none in context
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for driftwatch.

To load completions:

Bash:
  $ source <(driftwatch completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ driftwatch completion bash > /etc/bash_completion.d/driftwatch
  # macOS:
  $ driftwatch completion bash > $(brew --prefix)/etc/bash_completion.d/driftwatch

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ driftwatch completion zsh > "${fpath[1]}/_driftwatch"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ driftwatch completion fish | source

  # To load completions for each session, execute once:
  $ driftwatch completion fish > ~/.config/fish/completions/driftwatch.fish

PowerShell:
  PS> driftwatch completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> driftwatch completion powershell > driftwatch.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
