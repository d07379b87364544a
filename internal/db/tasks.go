package db

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tgienger/taskbox/internal/models"
)

// The assignee name is resolved from employee_id so renames and deletions never orphan it
const taskSelect = `
	SELECT t.id, t.title, t.employee_id, COALESCE(e.name, '') AS employee,
	       t.project_id, t.duration, t.progress, t.details, t.created_at
	FROM tasks t
	LEFT JOIN employees e ON e.id = t.employee_id
`

// CreateTask creates a new task. Referenced project and employee must exist.
func (db *DB) CreateTask(in models.TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, goerr.Wrap(ErrValidation, "task title is required", goerr.V(FieldKey, "title"))
	}

	if in.ProjectID != nil {
		if _, err := db.GetProject(*in.ProjectID); err != nil {
			return nil, goerr.Wrap(err, "task references unknown project", goerr.V(ProjectIDKey, *in.ProjectID))
		}
	}
	if in.EmployeeID != nil {
		if _, err := db.GetEmployee(*in.EmployeeID); err != nil {
			return nil, goerr.Wrap(err, "task references unknown employee", goerr.V(EmployeeIDKey, *in.EmployeeID))
		}
	}

	result, err := db.Exec(`
		INSERT INTO tasks (title, employee_id, project_id, duration, progress, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`, title, in.EmployeeID, in.ProjectID, in.Duration,
		models.ClampProgress(in.Progress), in.Details)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert task")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read task id")
	}

	return db.GetTask(id)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(id int64) (*models.Task, error) {
	t := &models.Task{}
	if err := db.Get(t, taskSelect+" WHERE t.id = ?", id); err != nil {
		return nil, notFound(err, "task", id)
	}
	return t, nil
}

// ListTasks returns tasks in insertion order, only those of projectID when it is non-nil
func (db *DB) ListTasks(projectID *int64) ([]models.Task, error) {
	tasks := []models.Task{}
	var err error
	if projectID != nil {
		err = db.Select(&tasks, taskSelect+" WHERE t.project_id = ? ORDER BY t.id ASC", *projectID)
	} else {
		err = db.Select(&tasks, taskSelect+" ORDER BY t.id ASC")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks")
	}
	return tasks, nil
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(id int64) error {
	return db.deleteByID("tasks", "task", id)
}
