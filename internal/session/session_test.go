package session_test

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskbox/internal/db"
	"github.com/tgienger/taskbox/internal/models"
	"github.com/tgienger/taskbox/internal/nav"
	"github.com/tgienger/taskbox/internal/session"
)

func newTestStore(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "taskbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func newTestSession(t *testing.T) (*session.Session, *db.DB, *logtest.Hook) {
	t.Helper()
	store := newTestStore(t)
	logger, hook := logtest.NewNullLogger()
	return session.New(store, session.WithLogger(logger)), store, hook
}

func chatTexts(msgs []models.ChatMessage) []string {
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Msg
	}
	return texts
}

func TestCreateProjectShowsInGrid(t *testing.T) {
	s, _, hook := newTestSession(t)

	_, err := s.CreateProject(models.ProjectInput{Name: "Warehouse A"})
	require.NoError(t, err)

	sc, err := s.Screen()
	require.NoError(t, err)
	assert.Equal(t, nav.SectionProjects, sc.Section)
	assert.Equal(t, session.ViewGrid, sc.ProjectView)
	require.Len(t, sc.Projects, 1)
	assert.Equal(t, "Warehouse A", sc.Projects[0].Name)
	assert.Equal(t, 0, sc.Projects[0].Progress)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "project created", entry.Message)
}

func TestOpenUnknownProject(t *testing.T) {
	s, _, _ := newTestSession(t)

	err := s.OpenProject(404)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, nav.Initial(), s.State())
}

func TestChatScenario(t *testing.T) {
	s, _, _ := newTestSession(t)

	p, err := s.CreateProject(models.ProjectInput{Name: "Warehouse A"})
	require.NoError(t, err)
	require.NoError(t, s.OpenProject(p.ID))
	require.NoError(t, s.SendMessage("Inspection passed"))
	require.NoError(t, s.CloseProject())
	require.NoError(t, s.OpenProject(p.ID))

	sc, err := s.Screen()
	require.NoError(t, err)
	assert.Equal(t, session.ViewDetail, sc.ProjectView)
	require.NotNil(t, sc.Project)
	assert.Equal(t, "Warehouse A", sc.Project.Name)
	require.Len(t, sc.Chat, 1)
	assert.Equal(t, "Inspection passed", sc.Chat[0].Msg)
	assert.Equal(t, session.DefaultSender, sc.Chat[0].User)
}

func TestSendMessageOrderAndBlank(t *testing.T) {
	s, store, _ := newTestSession(t)

	p, err := s.CreateProject(models.ProjectInput{Name: "p"})
	require.NoError(t, err)
	require.NoError(t, s.OpenProject(p.ID))

	require.NoError(t, s.SendMessage("a"))
	require.NoError(t, s.SendMessage("   "))
	require.NoError(t, s.SendMessage("b"))

	msgs, err := store.ListChatMessages(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, chatTexts(msgs))
}

func TestSendMessageOutsideDetail(t *testing.T) {
	s, _, _ := newTestSession(t)

	err := s.SendMessage("hello")
	assert.ErrorIs(t, err, session.ErrIllegalTransition)
}

func TestCustomSender(t *testing.T) {
	store := newTestStore(t)
	logger, _ := logtest.NewNullLogger()
	s := session.New(store, session.WithLogger(logger), session.WithSender("Foreman"))

	p, err := s.CreateProject(models.ProjectInput{Name: "p"})
	require.NoError(t, err)
	require.NoError(t, s.OpenProject(p.ID))
	require.NoError(t, s.SendMessage("on site"))

	sc, err := s.Screen()
	require.NoError(t, err)
	require.Len(t, sc.Chat, 1)
	assert.Equal(t, "Foreman", sc.Chat[0].User)
	assert.Equal(t, "Foreman", sc.Sender)
}

func TestDeleteOpenProjectReturnsToGrid(t *testing.T) {
	s, _, _ := newTestSession(t)

	p, err := s.CreateProject(models.ProjectInput{Name: "p"})
	require.NoError(t, err)
	require.NoError(t, s.OpenProject(p.ID))
	require.NoError(t, s.DeleteProject(p.ID))

	assert.False(t, s.State().InDetail())
	sc, err := s.Screen()
	require.NoError(t, err)
	assert.Equal(t, session.ViewGrid, sc.ProjectView)
	assert.Empty(t, sc.Projects)

	assert.ErrorIs(t, s.DeleteProject(p.ID), session.ErrNotFound)
}

func TestDeleteOtherProjectKeepsDetail(t *testing.T) {
	s, _, _ := newTestSession(t)

	a, err := s.CreateProject(models.ProjectInput{Name: "a"})
	require.NoError(t, err)
	b, err := s.CreateProject(models.ProjectInput{Name: "b"})
	require.NoError(t, err)
	require.NoError(t, s.OpenProject(a.ID))
	require.NoError(t, s.DeleteProject(b.ID))

	id, ok := s.State().ProjectID()
	require.True(t, ok)
	assert.Equal(t, a.ID, id)
}

func TestCloseFromGrid(t *testing.T) {
	s, _, _ := newTestSession(t)
	assert.ErrorIs(t, s.CloseProject(), session.ErrIllegalTransition)
}

func TestSectionsScreens(t *testing.T) {
	s, _, _ := newTestSession(t)

	p, err := s.CreateProject(models.ProjectInput{Name: "Warehouse A"})
	require.NoError(t, err)
	sam, err := s.CreateEmployee("Sam")
	require.NoError(t, err)
	_, err = s.CreateTask(models.TaskInput{Title: "Wire panel", ProjectID: &p.ID, EmployeeID: &sam.ID})
	require.NoError(t, err)

	require.NoError(t, s.SelectSection(nav.SectionEmployees))
	sc, err := s.Screen()
	require.NoError(t, err)
	require.Len(t, sc.Employees, 1)
	assert.Empty(t, sc.Projects)

	require.NoError(t, s.SelectSection(nav.SectionTasks))
	sc, err = s.Screen()
	require.NoError(t, err)
	require.Len(t, sc.Tasks, 1)
	assert.Equal(t, "Sam", sc.Tasks[0].Employee)
	assert.Equal(t, "Warehouse A", sc.ProjectName(sc.Tasks[0].ProjectID))

	require.NoError(t, s.SelectSection(nav.SectionBonds))
	sc, err = s.Screen()
	require.NoError(t, err)
	assert.Equal(t, nav.SectionBonds, sc.Section)
	assert.Empty(t, sc.Tasks)
}

func TestSectionSwitchPreservesDetail(t *testing.T) {
	s, _, _ := newTestSession(t)

	p, err := s.CreateProject(models.ProjectInput{Name: "p"})
	require.NoError(t, err)
	require.NoError(t, s.OpenProject(p.ID))
	require.NoError(t, s.SelectSection(nav.SectionEmployees))

	sc, err := s.Screen()
	require.NoError(t, err)
	assert.Equal(t, session.ViewDetail, sc.ProjectView)

	require.NoError(t, s.SelectSection(nav.SectionProjects))
	sc, err = s.Screen()
	require.NoError(t, err)
	require.NotNil(t, sc.Project)
	assert.Equal(t, p.ID, sc.Project.ID)
}

func TestDetailShowsProjectTasks(t *testing.T) {
	s, _, _ := newTestSession(t)

	a, err := s.CreateProject(models.ProjectInput{Name: "a"})
	require.NoError(t, err)
	b, err := s.CreateProject(models.ProjectInput{Name: "b"})
	require.NoError(t, err)
	_, err = s.CreateTask(models.TaskInput{Title: "for a", ProjectID: &a.ID})
	require.NoError(t, err)
	_, err = s.CreateTask(models.TaskInput{Title: "for b", ProjectID: &b.ID})
	require.NoError(t, err)

	require.NoError(t, s.OpenProject(a.ID))
	sc, err := s.Screen()
	require.NoError(t, err)
	require.Len(t, sc.ProjectTasks, 1)
	assert.Equal(t, "for a", sc.ProjectTasks[0].Title)
}

func TestScreenFallsBackWhenOpenProjectVanishes(t *testing.T) {
	s, store, _ := newTestSession(t)

	p, err := s.CreateProject(models.ProjectInput{Name: "p"})
	require.NoError(t, err)
	require.NoError(t, s.OpenProject(p.ID))

	// Removed behind the session's back
	require.NoError(t, store.DeleteProject(p.ID))

	sc, err := s.Screen()
	require.NoError(t, err)
	assert.Equal(t, session.ViewGrid, sc.ProjectView)
	assert.False(t, s.State().InDetail())
}

func TestRestore(t *testing.T) {
	store := newTestStore(t)
	logger, _ := logtest.NewNullLogger()

	first := session.New(store, session.WithLogger(logger))
	p, err := first.CreateProject(models.ProjectInput{Name: "p"})
	require.NoError(t, err)
	require.NoError(t, first.OpenProject(p.ID))
	require.NoError(t, first.SelectSection(nav.SectionTasks))

	second := session.New(store, session.WithLogger(logger))
	second.Restore()
	assert.Equal(t, nav.SectionTasks, second.State().Section)
	id, ok := second.State().ProjectID()
	require.True(t, ok)
	assert.Equal(t, p.ID, id)
}

func TestRestoreIgnoresDeletedProject(t *testing.T) {
	store := newTestStore(t)
	logger, _ := logtest.NewNullLogger()

	first := session.New(store, session.WithLogger(logger))
	p, err := first.CreateProject(models.ProjectInput{Name: "p"})
	require.NoError(t, err)
	require.NoError(t, first.OpenProject(p.ID))
	require.NoError(t, store.DeleteProject(p.ID))

	second := session.New(store, session.WithLogger(logger))
	second.Restore()
	assert.Equal(t, nav.Initial(), second.State())
}

func TestEmployeeBoundary(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.CreateEmployee("")
	assert.ErrorIs(t, err, session.ErrValidation)
	assert.True(t, session.IsUserError(err))

	require.NoError(t, s.SelectSection(nav.SectionEmployees))
	sc, err := s.Screen()
	require.NoError(t, err)
	assert.Empty(t, sc.Employees)
}

func TestDeleteTaskAndEmployee(t *testing.T) {
	s, store, _ := newTestSession(t)

	e, err := s.CreateEmployee("Sam")
	require.NoError(t, err)
	task, err := s.CreateTask(models.TaskInput{Title: "x", EmployeeID: &e.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteEmployee(e.ID))
	require.NoError(t, s.DeleteTask(task.ID))

	tasks, err := store.ListTasks(nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.ErrorIs(t, s.DeleteTask(task.ID), session.ErrNotFound)
}
