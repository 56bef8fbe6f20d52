package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Storage config
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "data/retros.db", cfg.Storage.Path)
	assert.Equal(t, 2*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, 5, cfg.Storage.BreakerFailures)

	// Store config
	assert.Equal(t, 32, cfg.Store.MaxCascadeDepth)
	assert.Equal(t, 1000, cfg.Store.ZIndexBase)

	assert.Equal(t, "RetrOS", cfg.Snapshot.ExportedFrom)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.IdleTTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
}

func TestLoadMatchesDefault(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                    "9000",
		"HOST":                    "127.0.0.1",
		"STORAGE_DRIVER":          "memory",
		"STORAGE_PATH":            "/tmp/state.db",
		"KV_TIMEOUT":              "500ms",
		"STORE_MAX_CASCADE_DEPTH": "4",
		"STORE_ZINDEX_BASE":       "10",
		"SNAPSHOT_EXPORTED_FROM":  "RetrOS test",
		"LOG_LEVEL":               "debug",
		"LOG_DEV":                 "true",
		"RATE_LIMIT_ENABLED":      "false",
		"RATE_LIMIT_IDLE_TTL":     "90s",
		"CORS_ORIGINS":            "http://localhost:5173,https://retros.example",
		FileEnv:                   "",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/state.db", cfg.Storage.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Storage.Timeout)
	assert.Equal(t, 4, cfg.Store.MaxCascadeDepth)
	assert.Equal(t, 10, cfg.Store.ZIndexBase)
	assert.Equal(t, "RetrOS test", cfg.Snapshot.ExportedFrom)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 90*time.Second, cfg.RateLimit.IdleTTL)
	assert.Equal(t, []string{"http://localhost:5173", "https://retros.example"}, cfg.CORS.AllowOrigins)
}

func TestLoadAppliesTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retros.toml")
	content := `
[storage]
driver = "memory"

[store]
max_cascade_depth = 8

[snapshot]
exported_from = "RetrOS kiosk"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv(FileEnv, path)
	t.Setenv("PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 8, cfg.Store.MaxCascadeDepth)
	assert.Equal(t, "RetrOS kiosk", cfg.Snapshot.ExportedFrom)
	// Keys absent from the file keep their environment value.
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "data/retros.db", cfg.Storage.Path)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[store\n"), 0o644))
	t.Setenv(FileEnv, path)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOrDefaultOnMissingFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.toml"))

	cfg := LoadOrDefault()
	assert.Equal(t, Default(), cfg)
}
