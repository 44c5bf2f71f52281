// Package config provides configuration management for the driftwatch CLI.
//
// This package extends the shared configuration types from internal/config
// with CLI-specific fields and functionality. The shared types (GraphConfig)
// are defined there and re-exported here via type aliases for convenience.
package config

import (
	sharedcfg "github.com/baseline-labs/driftwatch/internal/config"
)

// GraphConfig is an alias for the shared graph connection configuration.
// This allows CLI code to use config.GraphConfig without importing
// internal/config.
type GraphConfig = sharedcfg.GraphConfig

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is the resolved project root directory. It is inferred
	// at load time, never read from the config file.
	ProjectRoot string `koanf:"-"`

	DetectorsDir string               `koanf:"detectors_dir"`
	HistoryPath  string               `koanf:"history_path"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	Quiet        bool                 `koanf:"quiet"`
	OutputFormat string               `koanf:"output"`
	Graph        *GraphConfig         `koanf:"graph"`
	Environments map[string]EnvConfig `koanf:"environments"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	DetectorsDir string       `koanf:"detectors_dir"`
	HistoryPath  string       `koanf:"history_path"`
	Graph        *GraphConfig `koanf:"graph"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultDetectorsDir = sharedcfg.DefaultDetectorsDir
	DefaultHistoryFile  = ".driftwatch/history.db"
	DefaultEnv          = "dev"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
