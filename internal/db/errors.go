package db

import "errors"

// Error kinds reported by the store. Both are recoverable and expected on bad input.
var (
	// ErrValidation means a required field was missing or empty
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means a referenced id does not exist
	ErrNotFound = errors.New("not found")
)

// Context keys for error values
const (
	IDKey         = "id"
	ProjectIDKey  = "project_id"
	EmployeeIDKey = "employee_id"
	FieldKey      = "field"
	SettingKey    = "setting"
)
