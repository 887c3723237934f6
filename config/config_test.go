package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.State.Y)
	assert.Equal(t, "json", cfg.Input.Format)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", `
state:
  y: 7
output:
  format: yaml
log:
  level: debug
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.State.Y)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "json", cfg.Input.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "jsonreq.yaml", "state:\n  y: 42\n")
	t.Chdir(dir)

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.State.Y)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", "state:\n  y: 7\n")
	t.Setenv("JSONREQ_STATE_Y", "99")
	t.Setenv("JSONREQ_LOG_FORMAT", "json")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.State.Y)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, "test.env", "JSONREQ_INPUT_FORMAT=cbor\n")
	// t.Setenv restores the variable that godotenv sets.
	t.Setenv("JSONREQ_INPUT_FORMAT", "")
	require.NoError(t, os.Unsetenv("JSONREQ_INPUT_FORMAT"))

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "cbor", cfg.Input.Format)

	_, err = Load("", filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestDefaultEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefaultEnvFile, "JSONREQ_OUTPUT_FORMAT=yaml\n")
	t.Chdir(dir)
	t.Setenv("JSONREQ_OUTPUT_FORMAT", "")
	require.NoError(t, os.Unsetenv("JSONREQ_OUTPUT_FORMAT"))

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output.Format)
}
