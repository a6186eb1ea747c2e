package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pomotimer/internal/models"
	"pomotimer/internal/tracker"
)

func TestLoadGeneratesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	m := NewManager()
	cfg, err := m.Load(path)
	require.NoError(t, err)

	assert.Equal(t, models.DefaultConfig(), cfg)
	assert.Equal(t, path, m.GetConfigPath())
	assert.FileExists(t, path)

	reloaded, err := NewManager().Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestLoadReadsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[timer]
focus_minutes = 50
short_break_minutes = 10

[breathing]
pattern = "short_box"
duration_seconds = 60

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewManager().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Timer.FocusMinutes)
	assert.Equal(t, 10, cfg.Timer.ShortBreakMinutes)
	assert.Equal(t, 15, cfg.Timer.LongBreakMinutes, "unset keys keep defaults")
	assert.Equal(t, tracker.PatternShortBox, cfg.Breathing.Pattern)
	assert.Equal(t, 60, cfg.Breathing.DurationSeconds)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadUsesEnvironmentPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.toml")
	t.Setenv(EnvConfigPath, path)

	m := NewManager()
	_, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, path, m.GetConfigPath())
}

func TestLoadRejectsUnknownPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[breathing]\npattern = \"4-7-8\"\n"), 0644))

	_, err := NewManager().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Timer.FocusMinutes = 0
	cfg.Timer.LongBreakEvery = 0
	cfg.Timer.TickIntervalMs = 5000
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	cfg.Metrics.Enabled = true
	cfg.Metrics.ListenAddr = ""
	cfg.Breathing.Pattern = tracker.Pattern(42)

	err := NewManager().validateConfig(cfg)
	require.Error(t, err)

	for _, fragment := range []string{
		"focus_minutes",
		"long_break_every",
		"tick_interval_ms",
		"invalid log level: loud",
		"invalid log format: xml",
		"listen_addr",
		"invalid breathing pattern (valid: extended_exhale, coherent, short_box, simple)",
	} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestSaveConfigRequiresLoadedPath(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.SaveConfig(models.DefaultConfig()))

	path := filepath.Join(t.TempDir(), "config.toml")
	_, err := m.Load(path)
	require.NoError(t, err)

	cfg := models.DefaultConfig()
	cfg.Breathing.Pattern = tracker.PatternCoherent
	require.NoError(t, m.SaveConfig(cfg))

	reloaded, err := NewManager().Load(path)
	require.NoError(t, err)
	assert.Equal(t, tracker.PatternCoherent, reloaded.Breathing.Pattern)

	invalid := models.DefaultConfig()
	invalid.Timer.ShortBreakMinutes = -1
	assert.Error(t, m.SaveConfig(invalid))
}

func TestRenderWritesPatternKey(t *testing.T) {
	out, err := Render(models.DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, out, "extended_exhale")
	assert.Contains(t, out, "focus_minutes = 25")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := ExpandPath("~/.pomotimer/config.toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pomotimer", "config.toml"), expanded)

	unchanged, err := ExpandPath("/etc/pomotimer.toml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/pomotimer.toml", unchanged)
}

func TestResolvePathPrefersArgument(t *testing.T) {
	t.Setenv(EnvConfigPath, "/from/env.toml")

	m := NewManager()
	path, err := m.ResolvePath("/from/flag.toml")
	require.NoError(t, err)
	assert.Equal(t, "/from/flag.toml", path)

	path, err = m.ResolvePath()
	require.NoError(t, err)
	assert.Equal(t, "/from/env.toml", path)
}

func TestWriteDefaultReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timer]\nfocus_minutes = 50\n"), 0644))

	m := NewManager()
	cfg, err := m.WriteDefault(path)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConfig(), cfg)

	reloaded, err := NewManager().Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, reloaded.Timer.FocusMinutes)
}
