package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskbox/internal/db"
	"github.com/tgienger/taskbox/internal/models"
)

func TestCreateEmployee(t *testing.T) {
	database := newTestDB(t)

	e, err := database.CreateEmployee("Sam")
	require.NoError(t, err)
	assert.Equal(t, "Sam", e.Name)

	_, err = database.CreateEmployee("Alex")
	require.NoError(t, err)

	employees, err := database.ListEmployees()
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Sam", employees[0].Name)
	assert.Equal(t, "Alex", employees[1].Name)
}

func TestCreateEmployeeRejectsEmptyName(t *testing.T) {
	database := newTestDB(t)

	_, err := database.CreateEmployee("")
	assert.ErrorIs(t, err, db.ErrValidation)

	employees, err := database.ListEmployees()
	require.NoError(t, err)
	assert.Empty(t, employees)
}

func TestDeleteEmployeeUnassignsTasks(t *testing.T) {
	database := newTestDB(t)

	e, err := database.CreateEmployee("Sam")
	require.NoError(t, err)
	task, err := database.CreateTask(models.TaskInput{Title: "Wire panel", EmployeeID: &e.ID})
	require.NoError(t, err)
	assert.Equal(t, "Sam", task.Employee)

	require.NoError(t, database.DeleteEmployee(e.ID))

	got, err := database.GetTask(task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EmployeeID)
	assert.Equal(t, "", got.Employee)

	assert.ErrorIs(t, database.DeleteEmployee(e.ID), db.ErrNotFound)
}
