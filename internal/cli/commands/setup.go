// Package commands implements the tabkit subcommands.
package commands

import (
	"os"
	"strconv"

	"github.com/tabkit-labs/tabkit/internal/cli/config"
)

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	maxRows := config.DefaultMaxRows
	if v, err := strconv.Atoi(os.Getenv("TABKIT_MAX_ROWS")); err == nil {
		maxRows = v
	}

	return &config.Config{
		Delimiter: getEnvOrDefault("TABKIT_DELIMITER", config.DefaultDelimiter),
		MaxRows:   maxRows,
		Output:    getEnvOrDefault("TABKIT_OUTPUT", config.DefaultOutput),
		Verbose:   os.Getenv("TABKIT_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
