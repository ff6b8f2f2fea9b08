package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestWatchIntervalMustBeShorterThanBypass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TunnelWatch.IntervalSeconds = cfg.Bypass.IntervalSeconds

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be shorter")
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bypass.ServicePort = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestManagerCreatesDefaultsForMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)

	require.NoError(t, m.Load())
	assert.Equal(t, DefaultConfig().Bypass.Anchor, m.Get().Bypass.Anchor)

	// The defaults were written back for the operator to edit.
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestManagerLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)
	require.NoError(t, m.Load())

	cfg := m.Get()
	cfg.Bypass.IntervalSeconds = 120
	require.NoError(t, m.Update(cfg))

	m2 := NewManager(path)
	require.NoError(t, m2.Load())
	assert.Equal(t, 120, m2.Get().Bypass.IntervalSeconds)
}

func TestManagerRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 0\n"), 0600))

	m := NewManager(path)
	assert.Error(t, m.Load())
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BYPASS_INTERVAL_SECONDS", "90")

	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)
	require.NoError(t, m.Load())

	assert.Equal(t, "debug", m.Get().Log.Level)
	assert.Equal(t, 90, m.Get().Bypass.IntervalSeconds)
}

func TestInvalidEnvOverrideFailsLoad(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")

	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)

	err := m.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")
}

func TestBadEnvOverrideDoesNotPoisonConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	t.Setenv("LOG_LEVEL", "verbose")
	require.Error(t, NewManager(path).Load())

	// Without the override the file written on first boot still loads.
	t.Setenv("LOG_LEVEL", "")
	m := NewManager(path)
	require.NoError(t, m.Load())
	assert.Equal(t, DefaultConfig().Log.Level, m.Get().Log.Level)
}

func TestEnvOverridesAreNotPersisted(t *testing.T) {
	t.Setenv("BYPASS_INTERVAL_SECONDS", "90")

	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)
	require.NoError(t, m.Load())
	assert.Equal(t, 90, m.Get().Bypass.IntervalSeconds)

	t.Setenv("BYPASS_INTERVAL_SECONDS", "")
	m2 := NewManager(path)
	require.NoError(t, m2.Load())
	assert.Equal(t, DefaultConfig().Bypass.IntervalSeconds, m2.Get().Bypass.IntervalSeconds)
}

func TestProbeURLOverrideIsValidated(t *testing.T) {
	t.Setenv("BYPASS_PROBE_URL", ":not-a-url")

	path := filepath.Join(t.TempDir(), "config.yaml")
	err := NewManager(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe_url")
}

func TestGetConfigPathEnv(t *testing.T) {
	t.Setenv("BYPASS_CONFIG", "/etc/bypass/config.yaml")
	assert.Equal(t, "/etc/bypass/config.yaml", GetConfigPath())
}
