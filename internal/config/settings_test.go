package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())

	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "./data", s.DataDir)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "console", s.Log.Format)
	assert.Empty(t, s.Log.Graylog)
	assert.True(t, s.Index.Enabled)
	assert.Equal(t, "sqlite", s.Index.Driver)
	assert.Equal(t, filepath.Join("./data", "index.db"), s.Index.Path)
	assert.False(t, s.Influx.Enabled)
	assert.Equal(t, "telemetry", s.Influx.Bucket)
}

func TestLoadSettingsEnv(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())
	t.Setenv("QUADSIM_LOG_LEVEL", "debug")
	t.Setenv("QUADSIM_INFLUX_ENABLED", "true")
	t.Setenv("QUADSIM_DATA_DIR", "/tmp/flights")

	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "debug", s.Log.Level)
	assert.True(t, s.Influx.Enabled)
	assert.Equal(t, "/tmp/flights", s.DataDir)
	assert.Equal(t, filepath.Join("/tmp/flights", "index.db"), s.Index.Path)
}

func TestLoadSettingsFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	path := filepath.Join(dir, "quadsim.yaml")
	content := []byte("log:\n  format: json\n  graylog: localhost:12201\ninflux:\n  org: lab\n  bucket: flights\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, "localhost:12201", s.Log.Graylog)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "lab", s.Influx.Org)
	assert.Equal(t, "flights", s.Influx.Bucket)
}

func TestLoadSettingsMissingExplicitFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
