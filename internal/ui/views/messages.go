package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskbox/internal/models"
	"github.com/tgienger/taskbox/internal/nav"
	"github.com/tgienger/taskbox/internal/session"
)

// ScreenMsg delivers a freshly recomputed screen to a view
type ScreenMsg struct {
	Screen *session.Screen
}

// IntentDone reports the outcome of the last intent a view emitted
type IntentDone struct {
	Err error
}

// Intents forwarded by views to the app, which applies them to the session

type SelectSection struct{ Section nav.Section }

type OpenProject struct{ ID int64 }

type CloseProject struct{}

type CreateProject struct{ Input models.ProjectInput }

type DeleteProject struct{ ID int64 }

type CreateEmployee struct{ Name string }

type DeleteEmployee struct{ ID int64 }

type CreateTask struct{ Input models.TaskInput }

type DeleteTask struct{ ID int64 }

type SendMessage struct{ Text string }

// emit wraps an intent in a command
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
