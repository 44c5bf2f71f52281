// Package config provides shared configuration types for driftwatch.
// This package is decoupled from CLI concerns so other tools can load
// project configuration without pulling in cobra.
package config

import (
	"fmt"
	"strings"

	"github.com/baseline-labs/driftwatch/pkg/graph"
)

// GraphConfig holds asset graph connection configuration.
type GraphConfig struct {
	Type string `koanf:"type"` // neo4j, postgres, sqlite, duckdb

	// URI is a full connection URI for drivers that accept one
	// (e.g. bolt://localhost:7687).
	URI string `koanf:"uri"`

	// Network databases
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Database is a database name, or a file path for file-based backends.
	Database string `koanf:"database"`

	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// PasswordEnv names an environment variable to read the password from
	// when Password itself is unset. Keeps secrets out of config files.
	PasswordEnv string `koanf:"password_env"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Validate checks if the graph configuration is valid.
// It uses the driver registry to determine which backends are available.
func (g *GraphConfig) Validate() error {
	if g.Type == "" {
		return fmt.Errorf("graph type is required")
	}

	// Use driver registry as single source of truth
	if !graph.IsRegistered(strings.ToLower(g.Type)) {
		return &graph.UnknownDriverError{
			Type:      g.Type,
			Available: graph.ListDrivers(),
		}
	}

	return nil
}

// ToGraph converts the configuration into the driver-facing form.
func (g *GraphConfig) ToGraph() graph.Config {
	opts := make(map[string]string, len(g.Options))
	for k, v := range g.Options {
		opts[k] = v
	}
	return graph.Config{
		Type:     strings.ToLower(g.Type),
		URI:      g.URI,
		Host:     g.Host,
		Port:     g.Port,
		Database: g.Database,
		Username: g.User,
		Password: g.Password,
		Options:  opts,
	}
}

// ProjectConfig holds the minimal project configuration needed by tools
// that only care about where detectors live. This is a subset of the full
// CLI Config.
type ProjectConfig struct {
	DetectorsDir string       `koanf:"detectors_dir"`
	Graph        *GraphConfig `koanf:"graph"`
}
