package db

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tgienger/taskbox/internal/models"
)

const projectColumns = "id, name, duration, phase, progress, details, created_at"

// CreateProject creates a new project. Progress is clamped to [0,100].
func (db *DB) CreateProject(in models.ProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, goerr.Wrap(ErrValidation, "project name is required", goerr.V(FieldKey, "name"))
	}

	result, err := db.Exec(`
		INSERT INTO projects (name, duration, phase, progress, details) VALUES (?, ?, ?, ?, ?)
	`, name, in.Duration, in.Phase, models.ClampProgress(in.Progress), in.Details)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert project")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read project id")
	}

	return db.GetProject(id)
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(id int64) (*models.Project, error) {
	p := &models.Project{}
	if err := db.Get(p, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id); err != nil {
		return nil, notFound(err, "project", id)
	}
	return p, nil
}

// ListProjects returns all projects in insertion order
func (db *DB) ListProjects() ([]models.Project, error) {
	projects := []models.Project{}
	if err := db.Select(&projects, "SELECT "+projectColumns+" FROM projects ORDER BY id ASC"); err != nil {
		return nil, goerr.Wrap(err, "failed to list projects")
	}
	return projects, nil
}

// DeleteProject deletes a project together with its tasks and chat log
func (db *DB) DeleteProject(id int64) error {
	return db.deleteByID("projects", "project", id)
}

// ProjectCount returns the number of projects
func (db *DB) ProjectCount() (int, error) {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM projects"); err != nil {
		return 0, goerr.Wrap(err, "failed to count projects")
	}
	return count, nil
}
