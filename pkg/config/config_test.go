package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ".", config.OutputDir)
	assert.True(t, config.Records.IncludeWritten)
	assert.False(t, config.Records.IncludeErased)
	assert.Equal(t, "127.0.0.1", config.Server.Bind)
	assert.Equal(t, 9350, config.Server.Port)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		content := `output_dir: /tmp/out
records:
  include_written: true
  include_erased: true
server:
  bind: 0.0.0.0
  port: 8000
logging:
  level: debug
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

		config, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/out", config.OutputDir)
		assert.True(t, config.Records.IncludeErased)
		assert.Equal(t, 8000, config.Server.Port)
		assert.Equal(t, "debug", config.Logging.Level)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("{not yaml"), 0600))

		_, err := LoadConfig(configPath)
		assert.Error(t, err)
	})
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sub", "config.yaml")

	original := DefaultConfig()
	original.Records.IncludeErased = true
	require.NoError(t, SaveConfig(original, configPath))
	assert.True(t, ConfigExists(configPath))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}
