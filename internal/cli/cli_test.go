package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskbox/internal/cli"
	"github.com/tgienger/taskbox/internal/db"
	"github.com/tgienger/taskbox/internal/models"
	"gopkg.in/yaml.v3"
)

type harness struct {
	dir    string
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return &harness{dir: dir, dbPath: filepath.Join(dir, "taskbox.db")}
}

// run executes one command line against the harness database
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCmd(cli.BuildInfo{Version: "test", Commit: "abc123", Date: "today"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--db", h.dbPath,
		"--log-file", filepath.Join(h.dir, "log", "taskbox.log"),
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun(t, "version")
	assert.Contains(t, out, "taskbox test")
	assert.Contains(t, out, "abc123")
}

func TestProjectCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "project", "add", "Warehouse", "A", "--phase", "Framing", "--progress", "150")
	assert.Contains(t, out, "created project 1: Warehouse A")

	out = h.mustRun(t, "project", "list")
	assert.Contains(t, out, "Warehouse A")
	assert.Contains(t, out, "Framing")
	assert.Contains(t, out, "100%")

	out = h.mustRun(t, "-f", "json", "project", "list")
	var projects []models.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, 100, projects[0].Progress)

	h.mustRun(t, "project", "rm", "1")
	out = h.mustRun(t, "project", "list")
	assert.Contains(t, out, "(none)")
}

func TestProjectErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "project", "add", "   ")
	assert.ErrorIs(t, err, db.ErrValidation)

	_, err = h.run(t, "project", "rm", "42")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = h.run(t, "project", "rm", "abc")
	assert.ErrorIs(t, err, db.ErrValidation)
}

func TestTaskAndEmployeeCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "project", "add", "Warehouse A")
	h.mustRun(t, "employee", "add", "Ada", "Lovelace")

	out := h.mustRun(t, "task", "add", "Pour foundation", "-p", "1", "-e", "1", "--progress", "40")
	assert.Contains(t, out, "created task 1: Pour foundation")

	out = h.mustRun(t, "task", "list", "-p", "1")
	assert.Contains(t, out, "Pour foundation")
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "Warehouse A")

	// Removing the assignee leaves the task unassigned
	h.mustRun(t, "employee", "rm", "1")
	out = h.mustRun(t, "-f", "json", "task", "list")
	var tasks []models.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].EmployeeID)
	assert.Equal(t, "", tasks[0].Employee)

	_, err := h.run(t, "task", "add", "Orphan", "-p", "99")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestChatCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "project", "add", "Warehouse A")

	out := h.mustRun(t, "chat", "send", "1", "Inspection", "passed")
	assert.Contains(t, out, "Admin: Inspection passed")

	h.mustRun(t, "--sender", "Foreman", "chat", "send", "1", "Roof delivered")

	out = h.mustRun(t, "-f", "json", "chat", "log", "1")
	var msgs []models.ChatMessage
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "Admin", msgs[0].User)
	assert.Equal(t, "Inspection passed", msgs[0].Msg)
	assert.Equal(t, "Foreman", msgs[1].User)

	_, err := h.run(t, "chat", "log", "7")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = h.run(t, "chat", "send", "1", "  ")
	assert.ErrorIs(t, err, db.ErrValidation)
}

func TestSenderFromConfigFile(t *testing.T) {
	h := newHarness(t)
	cfg := filepath.Join(h.dir, "taskbox.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("chat:\n  sender: Site Office\n"), 0644))

	h.mustRun(t, "project", "add", "Warehouse A")
	out := h.mustRun(t, "--config", cfg, "chat", "send", "1", "hello")
	assert.Contains(t, out, "Site Office: hello")
}

func TestExportCommand(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "project", "add", "Warehouse A")
	h.mustRun(t, "chat", "send", "1", "Inspection passed")

	path := filepath.Join(h.dir, "export.yaml")
	h.mustRun(t, "export", "-o", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Projects []struct {
			Name string `yaml:"name"`
			Chat []struct {
				Msg string `yaml:"msg"`
			} `yaml:"chat"`
		} `yaml:"projects"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Projects, 1)
	assert.Equal(t, "Warehouse A", doc.Projects[0].Name)
	require.Len(t, doc.Projects[0].Chat, 1)
	assert.Equal(t, "Inspection passed", doc.Projects[0].Chat[0].Msg)
}

func TestUnknownFormat(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "-f", "xml", "project", "list")
	assert.Error(t, err)
}
