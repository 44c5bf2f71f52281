package config

import (
	"fmt"
	"os"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DetectorsDir == "" {
		return fmt.Errorf("detectors_dir is required")
	}

	// Only validate directory existence if we're running a command that needs it
	// This allows help commands to work without a valid directory
	return nil
}

// ValidateDirectories checks if required directories exist.
func (c *Config) ValidateDirectories() error {
	if _, err := os.Stat(c.DetectorsDir); os.IsNotExist(err) {
		return fmt.Errorf("detectors directory does not exist: %s\nHint: Create the directory or use --detectors-dir to specify a different path", c.DetectorsDir)
	}
	return nil
}
