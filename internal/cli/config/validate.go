package config

import (
	"fmt"
	"unicode/utf8"
)

// validOutputs lists the accepted values for the output option.
var validOutputs = map[string]bool{
	"table":    true,
	"csv":      true,
	"json":     true,
	"markdown": true,
	"md":       true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max_rows must not be negative, got %d", c.MaxRows)
	}
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid output format %q (valid: table, csv, json, markdown)", c.Output)
	}
	return nil
}

// DelimiterRune returns the configured CSV delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}
