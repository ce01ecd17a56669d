package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settingsgen.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, SnifferGuess, cfg.SnifferName())
	assert.Equal(t, filepath.Join(dir, "data", "uploads"), cfg.GetUploadDir())
	assert.Equal(t, 30*time.Minute, cfg.WorkspaceTimeout())
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval())
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settingsgen.config")

	xml := `<?xml version="1.0" encoding="UTF-8"?>
<SettingsGenerator>
  <Server><Port>9000</Port><BindAddress>127.0.0.1</BindAddress></Server>
  <Storage><DataDirectory>/srv/data</DataDirectory></Storage>
  <Processing><Sniffer>DuckDB</Sniffer><MaxWorkspaces>7</MaxWorkspaces></Processing>
  <Advanced><LogLevel>debug</LogLevel></Advanced>
</SettingsGenerator>`
	require.NoError(t, os.WriteFile(path, []byte(xml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddr())
	assert.Equal(t, "/srv/data", cfg.GetDataDir())
	assert.Equal(t, SnifferDuckDB, cfg.SnifferName())
	assert.Equal(t, 7, cfg.Processing.MaxWorkspaces)
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
	// unset elements keep their defaults
	assert.Equal(t, 30, cfg.Server.ReadTimeout)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7001")
	t.Setenv("DATA_DIR", "/tmp/settingsgen")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "settingsgen.config"))
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "/tmp/settingsgen", cfg.GetDataDir())
	assert.Equal(t, "warn", cfg.Advanced.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("malformed xml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.config")
		require.NoError(t, os.WriteFile(path, []byte("<SettingsGenerator>"), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("unknown sniffer", func(t *testing.T) {
		path := filepath.Join(dir, "sniffer.config")
		require.NoError(t, os.WriteFile(path, []byte("<SettingsGenerator><Processing><Sniffer>magic</Sniffer></Processing></SettingsGenerator>"), 0644))
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "unknown sniffer")
	})
}

func TestEnsureDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.resolvePaths(t.TempDir())

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{cfg.GetDataDir(), cfg.GetUploadDir(), cfg.Storage.TempDirectory} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
