// Package session drives one operator's dashboard: it owns the navigation
// state, applies intents against the store and recomputes what to display.
package session

import (
	"errors"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sirupsen/logrus"
	"github.com/tgienger/taskbox/internal/db"
	"github.com/tgienger/taskbox/internal/models"
	"github.com/tgienger/taskbox/internal/nav"
)

// Error kinds surfaced to presentation layers
var (
	ErrValidation        = db.ErrValidation
	ErrNotFound          = db.ErrNotFound
	ErrIllegalTransition = nav.ErrIllegalTransition
)

// DefaultSender is the fixed identity attached to chat messages
const DefaultSender = "Admin"

// Settings keys used to restore the last view on startup
const (
	settingLastSection = "last_section"
	settingLastProject = "last_project_id"
)

// Store is the persistence the session needs
type Store interface {
	nav.ProjectLookup
	ListProjects() ([]models.Project, error)
	CreateProject(in models.ProjectInput) (*models.Project, error)
	DeleteProject(id int64) error

	ListEmployees() ([]models.Employee, error)
	CreateEmployee(name string) (*models.Employee, error)
	DeleteEmployee(id int64) error

	ListTasks(projectID *int64) ([]models.Task, error)
	CreateTask(in models.TaskInput) (*models.Task, error)
	DeleteTask(id int64) error

	ListChatMessages(projectID int64) ([]models.ChatMessage, error)
	AppendChatMessage(projectID int64, user, msg string) (*models.ChatMessage, error)

	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Session is a single operator session. Actions are handled one at a time;
// callers that share a Session across goroutines must serialize access.
type Session struct {
	store  Store
	state  nav.State
	sender string
	log    logrus.FieldLogger
}

// Option configures a Session
type Option func(*Session)

// WithSender sets the chat sender identity
func WithSender(name string) Option {
	return func(s *Session) {
		if name = strings.TrimSpace(name); name != "" {
			s.sender = name
		}
	}
}

// WithLogger sets the logger used for mutations and warnings
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.log = log }
}

// New creates a session in the initial state
func New(store Store, opts ...Option) *Session {
	s := &Session{
		store:  store,
		state:  nav.Initial(),
		sender: DefaultSender,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current navigation state
func (s *Session) State() nav.State {
	return s.state
}

// Sender returns the chat sender identity
func (s *Session) Sender() string {
	return s.sender
}

// Restore reinstates the section and open project saved by a previous run.
// Stale or unreadable settings are ignored.
func (s *Session) Restore() {
	if slug, err := s.store.GetSetting(settingLastSection); err == nil && slug != "" {
		if section, err := nav.ParseSection(slug); err == nil {
			s.state, _ = s.state.SelectSection(section)
		}
	}

	raw, err := s.store.GetSetting(settingLastProject)
	if err != nil || raw == "" {
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return
	}
	section := s.state.Section
	next, err := s.state.OpenProject(s.store, id)
	if err != nil {
		s.log.WithField("project_id", id).Debug("last open project is gone")
		return
	}
	// Opening forces Projects; keep whatever section was saved
	s.state, _ = next.SelectSection(section)
}

// SelectSection switches the top-level section
func (s *Session) SelectSection(section nav.Section) error {
	next, err := s.state.SelectSection(section)
	if err != nil {
		return err
	}
	s.setState(next)
	return nil
}

// OpenProject shows the detail page of a project
func (s *Session) OpenProject(id int64) error {
	next, err := s.state.OpenProject(s.store, id)
	if err != nil {
		return err
	}
	s.setState(next)
	return nil
}

// CloseProject goes back to the project grid
func (s *Session) CloseProject() error {
	next, err := s.state.CloseProject()
	if err != nil {
		return err
	}
	s.setState(next)
	return nil
}

// CreateProject registers a new project
func (s *Session) CreateProject(in models.ProjectInput) (*models.Project, error) {
	p, err := s.store.CreateProject(in)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"project_id": p.ID, "name": p.Name}).Info("project created")
	return p, nil
}

// DeleteProject removes a project; if it was open the view returns to the grid
func (s *Session) DeleteProject(id int64) error {
	if err := s.store.DeleteProject(id); err != nil {
		return err
	}
	s.log.WithField("project_id", id).Info("project deleted")
	s.setState(s.state.ProjectDeleted(id))
	return nil
}

// CreateEmployee adds an employee to the directory
func (s *Session) CreateEmployee(name string) (*models.Employee, error) {
	e, err := s.store.CreateEmployee(name)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"employee_id": e.ID, "name": e.Name}).Info("employee created")
	return e, nil
}

// DeleteEmployee removes an employee
func (s *Session) DeleteEmployee(id int64) error {
	if err := s.store.DeleteEmployee(id); err != nil {
		return err
	}
	s.log.WithField("employee_id", id).Info("employee deleted")
	return nil
}

// CreateTask registers a task
func (s *Session) CreateTask(in models.TaskInput) (*models.Task, error) {
	t, err := s.store.CreateTask(in)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"task_id": t.ID, "title": t.Title}).Info("task created")
	return t, nil
}

// DeleteTask removes a task
func (s *Session) DeleteTask(id int64) error {
	if err := s.store.DeleteTask(id); err != nil {
		return err
	}
	s.log.WithField("task_id", id).Info("task deleted")
	return nil
}

// SendMessage posts text to the open project's chat as the session sender.
// Blank text is ignored. Returns ErrIllegalTransition outside a detail page.
func (s *Session) SendMessage(text string) error {
	id, ok := s.state.ProjectID()
	if !ok {
		return goerr.Wrap(ErrIllegalTransition, "no project is open")
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m, err := s.store.AppendChatMessage(id, s.sender, text)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"project_id": id, "message_id": m.ID}).Info("chat message sent")
	return nil
}

func (s *Session) setState(next nav.State) {
	s.state = next
	s.persist()
}

// persist saves the view for the next startup; failures only cost the restore
func (s *Session) persist() {
	if err := s.store.SetSetting(settingLastSection, s.state.Section.String()); err != nil {
		s.log.WithError(err).Warn("failed to save last section")
	}
	value := ""
	if id, ok := s.state.ProjectID(); ok {
		value = strconv.FormatInt(id, 10)
	}
	if err := s.store.SetSetting(settingLastProject, value); err != nil {
		s.log.WithError(err).Warn("failed to save last project")
	}
}

// IsUserError reports whether err is one of the expected, recoverable kinds
func IsUserError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrIllegalTransition)
}
