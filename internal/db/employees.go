package db

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tgienger/taskbox/internal/models"
)

// CreateEmployee adds a new employee to the directory
func (db *DB) CreateEmployee(name string) (*models.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, goerr.Wrap(ErrValidation, "employee name is required", goerr.V(FieldKey, "name"))
	}

	result, err := db.Exec("INSERT INTO employees (name) VALUES (?)", name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert employee")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read employee id")
	}

	return db.GetEmployee(id)
}

// GetEmployee retrieves an employee by ID
func (db *DB) GetEmployee(id int64) (*models.Employee, error) {
	e := &models.Employee{}
	if err := db.Get(e, "SELECT id, name, created_at FROM employees WHERE id = ?", id); err != nil {
		return nil, notFound(err, "employee", id)
	}
	return e, nil
}

// ListEmployees returns all employees in insertion order
func (db *DB) ListEmployees() ([]models.Employee, error) {
	employees := []models.Employee{}
	if err := db.Select(&employees, "SELECT id, name, created_at FROM employees ORDER BY id ASC"); err != nil {
		return nil, goerr.Wrap(err, "failed to list employees")
	}
	return employees, nil
}

// DeleteEmployee removes an employee; their tasks become unassigned
func (db *DB) DeleteEmployee(id int64) error {
	return db.deleteByID("employees", "employee", id)
}
