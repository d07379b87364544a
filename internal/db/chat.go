package db

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tgienger/taskbox/internal/models"
)

// AppendChatMessage adds a message to a project's chat log
func (db *DB) AppendChatMessage(projectID int64, user, msg string) (*models.ChatMessage, error) {
	// The message is stored as typed
	if strings.TrimSpace(msg) == "" {
		return nil, goerr.Wrap(ErrValidation, "message is required", goerr.V(FieldKey, "msg"))
	}
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, goerr.Wrap(ErrValidation, "sender is required", goerr.V(FieldKey, "user"))
	}
	if _, err := db.GetProject(projectID); err != nil {
		return nil, goerr.Wrap(err, "chat references unknown project", goerr.V(ProjectIDKey, projectID))
	}

	result, err := db.Exec(`
		INSERT INTO project_chat (project_id, user, msg) VALUES (?, ?, ?)
	`, projectID, user, msg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert chat message", goerr.V(ProjectIDKey, projectID))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read chat message id")
	}

	return db.GetChatMessage(id)
}

// GetChatMessage retrieves a chat message by ID
func (db *DB) GetChatMessage(id int64) (*models.ChatMessage, error) {
	m := &models.ChatMessage{}
	err := db.Get(m, `
		SELECT id, project_id, user, msg, created_at
		FROM project_chat WHERE id = ?
	`, id)
	if err != nil {
		return nil, notFound(err, "chat message", id)
	}
	return m, nil
}

// ListChatMessages returns a project's chat log, oldest first
func (db *DB) ListChatMessages(projectID int64) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	err := db.Select(&messages, `
		SELECT id, project_id, user, msg, created_at
		FROM project_chat
		WHERE project_id = ?
		ORDER BY id ASC
	`, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chat messages", goerr.V(ProjectIDKey, projectID))
	}
	return messages, nil
}
