package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeApp(t *testing.T, a *app, dbPath string, args ...string) error {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	root := a.rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--db", dbPath,
		"--log-file", filepath.Join(dir, "log", "taskbox.log"),
	}, args...))
	return root.Execute()
}

func TestFailedCommandReleasesResources(t *testing.T) {
	a := &app{}
	err := executeApp(t, a, filepath.Join(t.TempDir(), "taskbox.db"), "project", "rm", "42")
	require.Error(t, err)
	assert.Nil(t, a.store)
	assert.Nil(t, a.closeLog)
}

func TestSuccessfulCommandReleasesResources(t *testing.T) {
	a := &app{}
	err := executeApp(t, a, filepath.Join(t.TempDir(), "taskbox.db"), "project", "list")
	require.NoError(t, err)
	assert.Nil(t, a.store)
	assert.Nil(t, a.closeLog)
}

func TestFailedSetupClosesLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "taskbox.db")
	require.NoError(t, os.WriteFile(dbPath, bytes.Repeat([]byte("not sqlite "), 512), 0o600))

	a := &app{}
	err := executeApp(t, a, dbPath, "project", "list")
	require.Error(t, err)
	assert.NotNil(t, a.log)
	assert.Nil(t, a.store)
	assert.Nil(t, a.closeLog)
}
