package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskbox/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return dir
}

func TestDefaults(t *testing.T) {
	dir := isolate(t)

	v, err := config.New()
	require.NoError(t, err)
	cfg, err := config.Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "taskbox", "taskbox.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "data", "taskbox", "log", "taskbox.log"), cfg.LogFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "Admin", cfg.ChatSender)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestConfigFileInConfigDir(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "config", "taskbox")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(`
chat:
  sender: Foreman
server:
  addr: ":9000"
  allowed_origins:
    - https://dash.example.com
`), 0644))

	v, err := config.New()
	require.NoError(t, err)
	cfg, err := config.Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "Foreman", cfg.ChatSender)
	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.AllowedOrigins)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	dir := isolate(t)

	v, err := config.New()
	require.NoError(t, err)
	_, err = config.Load(v, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "taskbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))
	t.Setenv("TASKBOX_LOG_LEVEL", "debug")

	v, err := config.New()
	require.NoError(t, err)
	cfg, err := config.Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFlagsOverrideEverything(t *testing.T) {
	isolate(t)
	t.Setenv("TASKBOX_CHAT_SENDER", "FromEnv")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("sender", "", "")
	fs.String("db", "", "")
	require.NoError(t, fs.Parse([]string{"--sender", "FromFlag", "--db", "/tmp/x.db"}))

	v, err := config.New()
	require.NoError(t, err)
	require.NoError(t, config.BindFlags(v, fs))
	cfg, err := config.Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "FromFlag", cfg.ChatSender)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
}
