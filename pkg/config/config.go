// Package config loads and validates the scheduler's tunable settings
// (spec §6: session_length, number_of_new_problems, flexible_schedule,
// review_ratio, difficulty_cap, min_review_ratio) plus storage connection
// settings, from a YAML settings file layered over built-in defaults and
// overridden by environment variables.
package config

// Config is the umbrella configuration object returned by Initialize.
// cmd/scheduler reads session_length, number_of_new_problems and
// difficulty_cap from it to seed SessionState; no other component reads it.
type Config struct {
	configDir string // directory the settings file was loaded from, for reference

	// Settings holds the tunable scheduler knobs from spec §6.
	Settings *Settings
}

// Initialize is defined in loader.go.

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}
