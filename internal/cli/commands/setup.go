package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/baseline-labs/driftwatch/internal/cli/config"
	"github.com/baseline-labs/driftwatch/internal/cli/output"
	"github.com/baseline-labs/driftwatch/internal/history"
	"github.com/baseline-labs/driftwatch/internal/runner"
	"github.com/baseline-labs/driftwatch/pkg/graph"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's configuration.
// Connections to the graph and the history store are opened separately so
// commands that only read local files stay offline.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// OpenSession connects to the configured asset graph.
func (c *CommandContext) OpenSession(ctx context.Context) (graph.Session, error) {
	if c.Cfg.Graph == nil {
		return nil, fmt.Errorf("no graph connection configured")
	}
	sess, err := graph.Connect(ctx, c.Cfg.Graph.ToGraph(), c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to graph: %w", err)
	}
	return sess, nil
}

// OpenHistory opens the run history store. Returns nil when history is
// disabled via an empty path.
func (c *CommandContext) OpenHistory() (*history.Store, error) {
	if c.Cfg.HistoryPath == "" {
		return nil, nil
	}
	return history.Open(c.Cfg.HistoryPath, c.Logger)
}

// NewRunner builds a runner over an open session. store may be nil.
func (c *CommandContext) NewRunner(sess graph.Session, store *history.Store) *runner.Runner {
	return runner.New(sess, store, c.Logger)
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	detectorsDir := getEnvOrDefault("DRIFTWATCH_DETECTORS_DIR", config.DefaultDetectorsDir)
	historyPath := getEnvOrDefault("DRIFTWATCH_HISTORY_PATH", config.DefaultHistoryFile)
	environment := getEnvOrDefault("DRIFTWATCH_ENVIRONMENT", config.DefaultEnv)
	verbose := os.Getenv("DRIFTWATCH_VERBOSE") == "true"
	outputFormat := os.Getenv("DRIFTWATCH_OUTPUT")

	graphCfg := &config.GraphConfig{
		Type:     os.Getenv("DRIFTWATCH_GRAPH_TYPE"),
		URI:      os.Getenv("DRIFTWATCH_GRAPH_URI"),
		Database: os.Getenv("DRIFTWATCH_GRAPH_DATABASE"),
		User:     os.Getenv("DRIFTWATCH_GRAPH_USER"),
		Password: os.Getenv("DRIFTWATCH_GRAPH_PASSWORD"),
	}

	return &config.Config{
		DetectorsDir: detectorsDir,
		HistoryPath:  historyPath,
		Environment:  environment,
		Verbose:      verbose,
		OutputFormat: outputFormat,
		Graph:        graphCfg,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
