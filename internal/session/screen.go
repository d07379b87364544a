package session

import (
	"errors"

	"github.com/tgienger/taskbox/internal/models"
	"github.com/tgienger/taskbox/internal/nav"
)

// ProjectView names the Projects sub-state
type ProjectView string

const (
	ViewGrid   ProjectView = "grid"
	ViewDetail ProjectView = "detail"
)

// Screen is everything a renderer needs for the current state. It is rebuilt
// from the store on every call; nothing is cached between actions. Lists the
// current view shows are always non-nil, so they encode as [] when empty;
// lists the view does not use encode as null.
type Screen struct {
	Section     nav.Section   `json:"section"`
	ProjectView ProjectView   `json:"project_view"`
	OpenProject *int64        `json:"open_project,omitempty"`
	Sections    []nav.Section `json:"sections"`
	Sender      string        `json:"sender"`

	// Projects grid, and project choices on the Tasks page
	Projects []models.Project `json:"projects"`

	// Project detail
	Project      *models.Project      `json:"project,omitempty"`
	ProjectTasks []models.Task        `json:"project_tasks"`
	Chat         []models.ChatMessage `json:"chat"`

	// Employees page, and assignee choices on the Tasks page
	Employees []models.Employee `json:"employees"`

	// Tasks page
	Tasks []models.Task `json:"tasks"`
}

// ProjectName returns the name of a listed project, empty if unknown
func (sc *Screen) ProjectName(id *int64) string {
	if id == nil {
		return ""
	}
	for _, p := range sc.Projects {
		if p.ID == *id {
			return p.Name
		}
	}
	return ""
}

// Screen recomputes the view for the current state. This is the only place
// that reads display data; renderers call it after every action.
func (s *Session) Screen() (*Screen, error) {
	sc := &Screen{
		Section:     s.state.Section,
		ProjectView: ViewGrid,
		Sections:    nav.Sections,
		Sender:      s.sender,
	}
	if id, ok := s.state.ProjectID(); ok {
		sc.ProjectView = ViewDetail
		sc.OpenProject = &id
	}

	var err error
	switch s.state.Section {
	case nav.SectionProjects:
		err = s.loadProjects(sc)
	case nav.SectionEmployees:
		sc.Employees, err = s.store.ListEmployees()
	case nav.SectionTasks:
		err = s.loadTasks(sc)
	}
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Session) loadProjects(sc *Screen) error {
	id, ok := s.state.ProjectID()
	if ok {
		err := s.loadDetail(sc, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		// Deleted elsewhere (another process on the same file); show the grid
		s.log.WithField("project_id", id).Warn("open project no longer exists")
		s.setState(s.state.ProjectDeleted(id))
		sc.ProjectView = ViewGrid
		sc.OpenProject = nil
	}

	projects, err := s.store.ListProjects()
	if err != nil {
		return err
	}
	sc.Projects = projects
	return nil
}

func (s *Session) loadDetail(sc *Screen, id int64) error {
	p, err := s.store.GetProject(id)
	if err != nil {
		return err
	}
	tasks, err := s.store.ListTasks(&id)
	if err != nil {
		return err
	}
	chat, err := s.store.ListChatMessages(id)
	if err != nil {
		return err
	}
	sc.Project = p
	sc.ProjectTasks = tasks
	sc.Chat = chat
	return nil
}

func (s *Session) loadTasks(sc *Screen) error {
	tasks, err := s.store.ListTasks(nil)
	if err != nil {
		return err
	}
	projects, err := s.store.ListProjects()
	if err != nil {
		return err
	}
	employees, err := s.store.ListEmployees()
	if err != nil {
		return err
	}
	sc.Tasks = tasks
	sc.Projects = projects
	sc.Employees = employees
	return nil
}
