package models

import (
	"time"

	"pomotimer/internal/tracker"
)

// Config represents the application configuration
type Config struct {
	Timer     TimerConfig     `toml:"timer"`
	Breathing BreathingConfig `toml:"breathing"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Logging   LoggingConfig   `toml:"logging"`
	Instance  InstanceConfig  `toml:"instance"`
}

// TimerConfig contains focus and break lengths
type TimerConfig struct {
	FocusMinutes      int `toml:"focus_minutes"`
	ShortBreakMinutes int `toml:"short_break_minutes"`
	LongBreakMinutes  int `toml:"long_break_minutes"`
	LongBreakEvery    int `toml:"long_break_every"`
	TickIntervalMs    int `toml:"tick_interval_ms"`
}

// BreathingConfig contains break-time breathing settings
type BreathingConfig struct {
	Enabled         bool            `toml:"enabled"`
	Pattern         tracker.Pattern `toml:"pattern"`
	DurationSeconds int             `toml:"duration_seconds"`
}

// MetricsConfig contains Prometheus exporter settings
type MetricsConfig struct {
	Enabled    bool   `toml:"enabled"`
	ListenAddr string `toml:"listen_addr"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// InstanceConfig contains single instance lock settings
type InstanceConfig struct {
	LockDir string `toml:"lock_dir"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Timer: TimerConfig{
			FocusMinutes:      25,
			ShortBreakMinutes: 5,
			LongBreakMinutes:  15,
			LongBreakEvery:    4,
			TickIntervalMs:    100,
		},
		Breathing: BreathingConfig{
			Enabled:         true,
			Pattern:         tracker.PatternExtendedExhale,
			DurationSeconds: 90,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9464",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Instance: InstanceConfig{
			LockDir: "~/.pomotimer",
		},
	}
}

// FocusDuration returns the focus session length
func (c *TimerConfig) FocusDuration() time.Duration {
	return time.Duration(c.FocusMinutes) * time.Minute
}

// ShortBreakDuration returns the short break length
func (c *TimerConfig) ShortBreakDuration() time.Duration {
	return time.Duration(c.ShortBreakMinutes) * time.Minute
}

// LongBreakDuration returns the long break length
func (c *TimerConfig) LongBreakDuration() time.Duration {
	return time.Duration(c.LongBreakMinutes) * time.Minute
}

// TickInterval returns the cadence of the session tick loop
func (c *TimerConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// Duration returns the breathing exercise length used to derive cycle counts
func (c *BreathingConfig) Duration() time.Duration {
	return time.Duration(c.DurationSeconds) * time.Second
}
