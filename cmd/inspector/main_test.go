package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "editor.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: silent\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.yaml")

	out, err := run(t, "new", path)
	require.NoError(t, err)
	require.FileExists(t, path)
	assert.Equal(t, "saved "+path+"\n", out)

	_, err = run(t, "new", path)
	require.Error(t, err)

	out, err = run(t, "dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scene level\n")
	assert.Contains(t, out, `Value: "Main Camera"`)

	out, err = run(t, "types", "--components")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "SpriteAnimator")
	assert.NotContains(t, out, "Vec3 ")

	_, err = run(t, "dump", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
