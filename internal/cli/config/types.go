// Package config provides configuration management for the tabkit CLI.
//
// Configuration is loaded from defaults, an optional tabkit.yaml file,
// TABKIT_ environment variables and command line flags, in ascending
// precedence.
package config

// Config holds all CLI configuration options.
type Config struct {
	Delimiter string `koanf:"delimiter"`
	MaxRows   int    `koanf:"max_rows"`
	Output    string `koanf:"output"`
	Verbose   bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultDelimiter = ";"
	DefaultMaxRows   = 40
	DefaultOutput    = "table"
)
