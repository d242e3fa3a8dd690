package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/editor/internal/core/observability/log"
	"github.com/zeusync/editor/internal/editor/properties"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 64, cfg.Reflection.MaxDepth)
	assert.Equal(t, properties.DefaultConfig(), cfg.Properties())
}

func TestLoad(t *testing.T) {
	t.Run("Overrides", func(t *testing.T) {
		cfg, err := Load(strings.NewReader(`
log:
  level: debug
panel:
  slider_speed: 0.1
scene:
  workers: 8
`))
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Encoding)
		assert.Equal(t, float32(0.1), cfg.Panel.SliderSpeed)
		assert.Equal(t, 64, cfg.Panel.TextMaxSize)
		assert.Equal(t, 8, cfg.Scene.Workers)
	})

	t.Run("Empty", func(t *testing.T) {
		cfg, err := Load(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("Unknown Key", func(t *testing.T) {
		_, err := Load(strings.NewReader("panel:\n  speed: 2\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("Invalid Values", func(t *testing.T) {
		_, err := Load(strings.NewReader(`
log:
  level: loud
  encoding: xml
reflection:
  max_depth: 0
scene:
  workers: -1
`))
		require.ErrorIs(t, err, ErrInvalidConfig)
		for _, key := range []string{"log.encoding", "reflection.max_depth", "scene.workers", "loud"} {
			assert.Contains(t, err.Error(), key)
		}
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Logger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "error"
	cfg.Log.OutputPaths = []string{filepath.Join(t.TempDir(), "editor.log")}

	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.Equal(t, log.LevelError, logger.GetLevel())
}
