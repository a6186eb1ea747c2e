package config

import "pomotimer/internal/tracker"

// ValidLogLevels returns the accepted logging levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the accepted log output formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// ValidPatterns returns the configuration keys of every breathing pattern
func ValidPatterns() []string {
	patterns := tracker.Patterns()
	keys := make([]string, 0, len(patterns))
	for _, p := range patterns {
		keys = append(keys, p.String())
	}
	return keys
}

// EnvConfigPath names the environment variable that overrides the config path
const EnvConfigPath = "POMOTIMER_CONFIG"

// EnvLogLevel names the environment variable that overrides the log level
const EnvLogLevel = "POMOTIMER_LOG_LEVEL"
