package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskbox/internal/db"
	"github.com/tgienger/taskbox/internal/server"
	"github.com/tgienger/taskbox/internal/session"
)

type screenResponse struct {
	Section     string `json:"section"`
	ProjectView string `json:"project_view"`
	Projects    []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Progress int    `json:"progress"`
	} `json:"projects"`
	Project *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
	Chat []struct {
		User string `json:"user"`
		Msg  string `json:"msg"`
	} `json:"chat"`
	Employees []struct {
		Name string `json:"name"`
	} `json:"employees"`
	Tasks []struct {
		Title    string `json:"title"`
		Employee string `json:"employee"`
	} `json:"tasks"`
}

type errorResponse struct {
	Kind string `json:"kind"`
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "taskbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	logger, _ := logtest.NewNullLogger()
	sess := session.New(database, session.WithLogger(logger))
	return server.New(sess, server.WithLogger(logger), server.WithAllowedOrigins([]string{"http://localhost:3000"}))
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeScreen(t *testing.T, rec *httptest.ResponseRecorder) screenResponse {
	t.Helper()
	var sc screenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sc))
	return sc
}

func decodeKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e.Kind
}

func TestInitialScreen(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/screen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sc := decodeScreen(t, rec)
	assert.Equal(t, "projects", sc.Section)
	assert.Equal(t, "grid", sc.ProjectView)
}

func TestProjectChatFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/projects", map[string]any{"name": "Warehouse A"})
	require.Equal(t, http.StatusCreated, rec.Code)
	sc := decodeScreen(t, rec)
	require.Len(t, sc.Projects, 1)
	assert.Equal(t, 0, sc.Projects[0].Progress)
	id := strconv.FormatInt(sc.Projects[0].ID, 10)

	rec = do(t, srv, http.MethodPost, "/api/projects/"+id+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "detail", decodeScreen(t, rec).ProjectView)

	rec = do(t, srv, http.MethodPost, "/api/chat", map[string]any{"text": "Inspection passed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/projects/close", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, srv, http.MethodPost, "/api/projects/"+id+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sc = decodeScreen(t, rec)
	require.NotNil(t, sc.Project)
	assert.Equal(t, "Warehouse A", sc.Project.Name)
	require.Len(t, sc.Chat, 1)
	assert.Equal(t, "Inspection passed", sc.Chat[0].Msg)
	assert.Equal(t, "Admin", sc.Chat[0].User)

	rec = do(t, srv, http.MethodDelete, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grid", decodeScreen(t, rec).ProjectView)
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   string
	}{
		{"empty project name", http.MethodPost, "/api/projects", map[string]any{"name": ""}, http.StatusBadRequest, "validation"},
		{"empty employee name", http.MethodPost, "/api/employees", map[string]any{"name": " "}, http.StatusBadRequest, "validation"},
		{"bad id", http.MethodPost, "/api/projects/abc/open", nil, http.StatusBadRequest, "validation"},
		{"unknown project", http.MethodPost, "/api/projects/99/open", nil, http.StatusNotFound, "not_found"},
		{"delete unknown task", http.MethodDelete, "/api/tasks/5", nil, http.StatusNotFound, "not_found"},
		{"close from grid", http.MethodPost, "/api/projects/close", nil, http.StatusConflict, "illegal_transition"},
		{"chat from grid", http.MethodPost, "/api/chat", map[string]any{"text": "hi"}, http.StatusConflict, "illegal_transition"},
		{"unknown section", http.MethodPost, "/api/section", map[string]any{"section": "moon"}, http.StatusBadRequest, "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.kind, decodeKind(t, rec))
		})
	}
}

func TestEmployeesAndTasks(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/section", map[string]any{"section": "employees"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/employees", map[string]any{"name": "Sam"})
	require.Equal(t, http.StatusCreated, rec.Code)
	sc := decodeScreen(t, rec)
	require.Len(t, sc.Employees, 1)
	assert.Equal(t, "employees", sc.Section)

	rec = do(t, srv, http.MethodPost, "/api/section", map[string]any{"section": "tasks"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/tasks", map[string]any{"title": "Wire panel", "employee_id": 1, "progress": 40})
	require.Equal(t, http.StatusCreated, rec.Code)
	sc = decodeScreen(t, rec)
	require.Len(t, sc.Tasks, 1)
	assert.Equal(t, "Sam", sc.Tasks[0].Employee)

	rec = do(t, srv, http.MethodPost, "/api/tasks", map[string]any{"title": "Ghost", "employee_id": 77})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func rawFields(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/screen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(rawFields(t, rec)["projects"]))

	rec = do(t, srv, http.MethodPost, "/api/projects", map[string]any{"name": "Warehouse A"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := strconv.FormatInt(decodeScreen(t, rec).Projects[0].ID, 10)

	rec = do(t, srv, http.MethodPost, "/api/projects/"+id+"/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fields := rawFields(t, rec)
	assert.JSONEq(t, `[]`, string(fields["chat"]))
	assert.JSONEq(t, `[]`, string(fields["project_tasks"]))

	rec = do(t, srv, http.MethodPost, "/api/section", map[string]any{"section": "employees"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(rawFields(t, rec)["employees"]))

	rec = do(t, srv, http.MethodPost, "/api/section", map[string]any{"section": "tasks"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(rawFields(t, rec)["tasks"]))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/screen", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
