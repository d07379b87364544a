// Package export writes a full snapshot of the dashboard data as YAML.
package export

import (
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tgienger/taskbox/internal/models"
	"gopkg.in/yaml.v3"
)

// Source is the read side of the store
type Source interface {
	ListProjects() ([]models.Project, error)
	ListEmployees() ([]models.Employee, error)
	ListTasks(projectID *int64) ([]models.Task, error)
	ListChatMessages(projectID int64) ([]models.ChatMessage, error)
}

// ProjectDump is a project with its chat log
type ProjectDump struct {
	models.Project `yaml:",inline"`
	Chat           []models.ChatMessage `yaml:"chat"`
}

// Snapshot is the exported document
type Snapshot struct {
	ExportedAt time.Time         `yaml:"exported_at"`
	Projects   []ProjectDump     `yaml:"projects"`
	Employees  []models.Employee `yaml:"employees"`
	Tasks      []models.Task     `yaml:"tasks"`
}

// Collect reads every entity from src
func Collect(src Source, now time.Time) (*Snapshot, error) {
	projects, err := src.ListProjects()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{ExportedAt: now.UTC(), Projects: make([]ProjectDump, 0, len(projects))}
	for _, p := range projects {
		chat, err := src.ListChatMessages(p.ID)
		if err != nil {
			return nil, err
		}
		snap.Projects = append(snap.Projects, ProjectDump{Project: p, Chat: chat})
	}

	if snap.Employees, err = src.ListEmployees(); err != nil {
		return nil, err
	}
	if snap.Tasks, err = src.ListTasks(nil); err != nil {
		return nil, err
	}
	return snap, nil
}

// Write encodes a snapshot of src to w
func Write(w io.Writer, src Source, now time.Time) error {
	snap, err := Collect(src, now)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return goerr.Wrap(err, "failed to encode snapshot")
	}
	return enc.Close()
}
