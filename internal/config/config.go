package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"pomotimer/internal/models"
	"pomotimer/internal/tracker"
)

// Manager handles configuration loading, validation, and generation
type Manager struct {
	config     *models.Config
	configPath string
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{}
}

// Load loads the configuration from the given path, the POMOTIMER_CONFIG
// environment variable, or the default location, in that order
func (m *Manager) Load(configPath ...string) (*models.Config, error) {
	path, err := m.ResolvePath(configPath...)
	if err != nil {
		return nil, err
	}
	m.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m.generateDefaultConfig(path)
	}

	return m.loadFromFile(path)
}

// ResolvePath returns the expanded config path Load would use
func (m *Manager) ResolvePath(configPath ...string) (string, error) {
	var path string
	switch {
	case len(configPath) > 0 && configPath[0] != "":
		path = configPath[0]
	case os.Getenv(EnvConfigPath) != "":
		path = os.Getenv(EnvConfigPath)
	default:
		var err error
		path, err = m.getDefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	return m.ExpandPath(path)
}

// WriteDefault writes the default configuration to path, replacing any existing file
func (m *Manager) WriteDefault(path string) (*models.Config, error) {
	m.configPath = path
	return m.generateDefaultConfig(path)
}

// loadFromFile loads configuration from the specified file
func (m *Manager) loadFromFile(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := models.DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := m.validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	m.config = config
	return config, nil
}

// generateDefaultConfig writes the default configuration to path and returns it
func (m *Manager) generateDefaultConfig(path string) (*models.Config, error) {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	config := models.DefaultConfig()
	if err := m.saveToFile(config, path); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}

	slog.Info("Created default configuration file", "path", path)

	m.config = config
	return config, nil
}

// saveToFile saves configuration to the specified file
func (m *Manager) saveToFile(config *models.Config, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateConfig validates the configuration for common issues
func (m *Manager) validateConfig(config *models.Config) error {
	var errors []string

	if config.Timer.FocusMinutes <= 0 {
		errors = append(errors, "focus_minutes must be greater than 0")
	}
	if config.Timer.ShortBreakMinutes <= 0 {
		errors = append(errors, "short_break_minutes must be greater than 0")
	}
	if config.Timer.LongBreakMinutes < config.Timer.ShortBreakMinutes {
		errors = append(errors, "long_break_minutes must not be shorter than short_break_minutes")
	}
	if config.Timer.LongBreakEvery < 1 {
		errors = append(errors, "long_break_every must be at least 1")
	}
	if config.Timer.TickIntervalMs < 10 || config.Timer.TickIntervalMs > 1000 {
		errors = append(errors, "tick_interval_ms must be between 10 and 1000")
	}

	if !slices.Contains(tracker.Patterns(), config.Breathing.Pattern) {
		errors = append(errors, fmt.Sprintf("invalid breathing pattern (valid: %s)", strings.Join(ValidPatterns(), ", ")))
	}
	if config.Breathing.DurationSeconds < 0 {
		errors = append(errors, "breathing duration_seconds cannot be negative")
	}

	if config.Metrics.Enabled && config.Metrics.ListenAddr == "" {
		errors = append(errors, "metrics listen_addr cannot be empty when metrics are enabled")
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(config.Logging.Level)) {
		errors = append(errors, fmt.Sprintf("invalid log level: %s", config.Logging.Level))
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(config.Logging.Format)) {
		errors = append(errors, fmt.Sprintf("invalid log format: %s", config.Logging.Format))
	}

	if config.Instance.LockDir == "" {
		errors = append(errors, "instance lock_dir cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getDefaultConfigPath returns the default configuration file path
func (m *Manager) getDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".pomotimer", "config.toml"), nil
}

// GetConfig returns the loaded configuration
func (m *Manager) GetConfig() *models.Config {
	return m.config
}

// GetConfigPath returns the path to the configuration file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// SaveConfig validates and saves a configuration to the loaded path
func (m *Manager) SaveConfig(config *models.Config) error {
	if m.configPath == "" {
		return fmt.Errorf("no config path set")
	}

	if err := m.validateConfig(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := m.saveToFile(config, m.configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	m.config = config

	return nil
}

// Render returns the TOML encoding of a configuration
func Render(config *models.Config) (string, error) {
	data, err := toml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ExpandPath expands ~ in file paths to the user's home directory
func (m *Manager) ExpandPath(path string) (string, error) {
	return ExpandPath(path)
}

// ExpandPath expands ~ in file paths to the user's home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}
