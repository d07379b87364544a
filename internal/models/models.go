package models

import "time"

// Employee is a member of the team directory
type Employee struct {
	ID        int64     `db:"id" json:"id" yaml:"id"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
}

// Project represents a tracked job shown as a card on the dashboard
type Project struct {
	ID        int64     `db:"id" json:"id" yaml:"id"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	Duration  string    `db:"duration" json:"duration" yaml:"duration"` // free-form estimate, e.g. "6 weeks"
	Phase     string    `db:"phase" json:"phase" yaml:"phase"`          // free-form stage label
	Progress  int       `db:"progress" json:"progress" yaml:"progress"` // 0-100
	Details   string    `db:"details" json:"details" yaml:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
}

// Task is a unit of work, optionally linked to a project and an assignee
type Task struct {
	ID         int64  `db:"id" json:"id" yaml:"id"`
	Title      string `db:"title" json:"title" yaml:"title"`
	EmployeeID *int64 `db:"employee_id" json:"employee_id,omitempty" yaml:"employee_id,omitempty"`
	// Employee is the assignee name resolved from EmployeeID, empty when unassigned
	Employee  string    `db:"employee" json:"employee" yaml:"employee"`
	ProjectID *int64    `db:"project_id" json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Duration  string    `db:"duration" json:"duration" yaml:"duration"`
	Progress  int       `db:"progress" json:"progress" yaml:"progress"`
	Details   string    `db:"details" json:"details" yaml:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
}

// ChatMessage is a single line of a project's chat log
type ChatMessage struct {
	ID        int64     `db:"id" json:"id" yaml:"id"`
	ProjectID int64     `db:"project_id" json:"project_id" yaml:"project_id"`
	User      string    `db:"user" json:"user" yaml:"user"`
	Msg       string    `db:"msg" json:"msg" yaml:"msg"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
}

// ProjectInput holds the fields accepted when creating a project
type ProjectInput struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Phase    string `json:"phase"`
	Progress int    `json:"progress"`
	Details  string `json:"details"`
}

// TaskInput holds the fields accepted when creating a task
type TaskInput struct {
	Title      string `json:"title"`
	EmployeeID *int64 `json:"employee_id,omitempty"`
	ProjectID  *int64 `json:"project_id,omitempty"`
	Duration   string `json:"duration"`
	Progress   int    `json:"progress"`
	Details    string `json:"details"`
}

// ClampProgress bounds a percentage to [0,100]
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
