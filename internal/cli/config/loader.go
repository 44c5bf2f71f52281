package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	sharedcfg "github.com/baseline-labs/driftwatch/internal/config"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// findConfigFile finds the config file to use.
// Priority: explicit path > driftwatch.yaml > driftwatch.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(sharedcfg.ConfigFileName); err == nil {
		return sharedcfg.ConfigFileName
	}
	if _, err := os.Stat(sharedcfg.ConfigFileNameAlt); err == nil {
		return sharedcfg.ConfigFileNameAlt
	}
	return ""
}

// configExistsIn checks if a driftwatch config file exists in the directory.
func configExistsIn(dir string) bool {
	return sharedcfg.FindConfigFileIn(dir) != ""
}

// findProjectRootUpward searches upward from startDir for a driftwatch config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root from CLI flags and filesystem.
// Priority:
//  1. Explicit --project-dir flag
//  2. Infer from --detectors-dir (parent if contains config or named "detectors")
//  3. Search upward from CWD for driftwatch.yaml
//  4. Current working directory
func inferProjectRoot(flags *pflag.FlagSet) string {
	// 1. Check explicit --project-dir
	if flags != nil {
		if projectDir, _ := flags.GetString("project-dir"); projectDir != "" && flags.Changed("project-dir") {
			abs, err := filepath.Abs(projectDir)
			if err == nil {
				return abs
			}
			return filepath.Clean(projectDir)
		}
	}

	// 2. Infer from --detectors-dir
	if flags != nil {
		if detectorsDir, _ := flags.GetString("detectors-dir"); detectorsDir != "" && flags.Changed("detectors-dir") {
			absDetectors, err := filepath.Abs(detectorsDir)
			if err == nil {
				parent := filepath.Dir(absDetectors)

				// If parent has a config file, it's the project root
				if configExistsIn(parent) {
					return parent
				}

				// If folder is named "detectors", assume parent is root
				if filepath.Base(absDetectors) == "detectors" {
					return parent
				}
			}
		}
	}

	// 3. Search upward from CWD for driftwatch.yaml
	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	// 4. Default to CWD
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithEnvironment(cfgFile, "", flags)
}

// LoadConfigWithEnvironment loads configuration with an optional environment
// override. The envOverride parameter selects which environment block's
// overrides to apply. The flags parameter allows CLI flags to override config
// file and env var values.
func LoadConfigWithEnvironment(cfgFile string, envOverride string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// Infer project root from flags before loading config.
	// This enables the "anchor pattern" where --detectors-dir testdata/detectors
	// implies project root is testdata/
	projectRoot := inferProjectRoot(flags)

	// Track paths that were explicitly provided as flags (already relative to CWD).
	// These will be converted to absolute paths before the normal resolution step,
	// to prevent double-resolution when project root was inferred from them.
	var flagDetectorsDir, flagHistoryPath string
	if flags != nil {
		if flags.Changed("detectors-dir") {
			if v, _ := flags.GetString("detectors-dir"); v != "" {
				flagDetectorsDir, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("history") {
			if v, _ := flags.GetString("history"); v != "" {
				// History path can be :memory: or a file path
				if v != ":memory:" {
					flagHistoryPath, _ = filepath.Abs(v)
				} else {
					flagHistoryPath = v
				}
			}
		}
	}

	// If an explicit config file is provided, use its directory as project root
	// (unless a more specific hint was given via flags)
	if cfgFile != "" && projectRoot == inferProjectRoot(nil) {
		// No flag-based inference happened, use config file's directory
		if absPath, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(absPath)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"detectors_dir": DefaultDetectorsDir,
		"history_path":  DefaultHistoryFile,
		"environment":   DefaultEnv,
		"verbose":       false,
		"quiet":         false,
		"output":        DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	// Search in project root if no explicit config file provided
	if cfgFile == "" {
		candidate := sharedcfg.FindConfigFileIn(projectRoot)
		if candidate != "" {
			cfgFile = candidate
		}
	}
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (DRIFTWATCH_ prefix)
	// Transform: DRIFTWATCH_DETECTORS_DIR -> detectors_dir
	// Graph settings nest under the graph block: DRIFTWATCH_GRAPH_URI -> graph.uri
	if err := k.Load(env.Provider("DRIFTWATCH_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "DRIFTWATCH_"))
		if rest, ok := strings.CutPrefix(key, "graph_"); ok {
			return "graph." + rest
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// --graph-password-prompt is interactive-only; it never lands in config
			if f.Name == "graph-password-prompt" {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// EXPLICIT MAPPING: Bridge the gap between --history flag and history_path config key
			// The CLI uses --history for brevity, but the config struct uses history_path for clarity
			if key == "history" {
				return "history_path", posflag.FlagVal(flags, f)
			}

			// Nest --graph-* flags under the graph block
			if rest, ok := strings.CutPrefix(key, "graph_"); ok {
				return "graph." + rest, posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Set project root and resolve relative paths
	// Use project root as base for all path resolution (not config file directory)
	cfg.ProjectRoot = projectRoot

	// For paths explicitly provided via flags, use the pre-computed absolute paths
	// (already computed relative to CWD at flag parse time).
	// For paths from config file or defaults, resolve relative to project root.
	if flagDetectorsDir != "" {
		cfg.DetectorsDir = flagDetectorsDir
	} else {
		cfg.DetectorsDir = resolvePathRelativeTo(cfg.DetectorsDir, projectRoot)
	}
	if flagHistoryPath != "" {
		cfg.HistoryPath = flagHistoryPath
	} else if cfg.HistoryPath != ":memory:" {
		cfg.HistoryPath = resolvePathRelativeTo(cfg.HistoryPath, projectRoot)
	}

	// Determine which environment's overrides to apply
	envName := cfg.Environment
	if envOverride != "" {
		envName = envOverride
	}

	// Apply environment-specific overrides if an environment is selected.
	// Flag-provided paths still win over environment overrides.
	if envName != "" && cfg.Environments != nil {
		if envCfg, ok := cfg.Environments[envName]; ok {
			if envCfg.DetectorsDir != "" && flagDetectorsDir == "" {
				cfg.DetectorsDir = resolvePathRelativeTo(envCfg.DetectorsDir, projectRoot)
			}
			if envCfg.HistoryPath != "" && flagHistoryPath == "" {
				cfg.HistoryPath = resolvePathRelativeTo(envCfg.HistoryPath, projectRoot)
			}

			// Merge environment graph with base graph
			if envCfg.Graph != nil {
				cfg.Graph = MergeGraphConfig(cfg.Graph, envCfg.Graph)
			}
		}
	}
	if envOverride != "" {
		cfg.Environment = envOverride
	}

	// Initialize default graph config if not specified
	if cfg.Graph == nil {
		cfg.Graph = &GraphConfig{Type: sharedcfg.DefaultGraphType}
	}

	// Apply defaults based on graph type
	sharedcfg.ApplyGraphDefaults(cfg.Graph)

	// Expand environment variables in graph settings
	expandGraphEnvVars(cfg.Graph)

	// Resolve the indirect password reference after expansion so
	// password_env can itself come from ${VAR}
	if cfg.Graph.Password == "" && cfg.Graph.PasswordEnv != "" {
		cfg.Graph.Password = os.Getenv(cfg.Graph.PasswordEnv)
	}

	// Validate graph configuration
	if err := cfg.Graph.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig or LoadConfigWithEnvironment is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	// Match ${VAR} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandGraphEnvVars expands environment variables in sensitive graph fields.
func expandGraphEnvVars(g *GraphConfig) {
	if g == nil {
		return
	}
	g.Password = expandEnvVars(g.Password)
	g.PasswordEnv = expandEnvVars(g.PasswordEnv)
	g.User = expandEnvVars(g.User)
	g.Host = expandEnvVars(g.Host)
	g.URI = expandEnvVars(g.URI)
	g.Database = expandEnvVars(g.Database)
}

// MergeGraphConfig merges two graph configs, with override taking precedence.
func MergeGraphConfig(base, override *GraphConfig) *GraphConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	// Start with a copy of base
	merged := &GraphConfig{
		Type:        base.Type,
		URI:         base.URI,
		Host:        base.Host,
		Port:        base.Port,
		Database:    base.Database,
		User:        base.User,
		Password:    base.Password,
		PasswordEnv: base.PasswordEnv,
		Options:     make(map[string]string),
	}

	// Copy base options
	for k, v := range base.Options {
		merged.Options[k] = v
	}

	// Apply overrides
	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.URI != "" {
		merged.URI = override.URI
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.PasswordEnv != "" {
		merged.PasswordEnv = override.PasswordEnv
	}

	// Merge options
	for k, v := range override.Options {
		merged.Options[k] = v
	}

	return merged
}
