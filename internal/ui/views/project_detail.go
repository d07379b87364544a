package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskbox/internal/models"
	"github.com/tgienger/taskbox/internal/ui/keys"
	"github.com/tgienger/taskbox/internal/ui/styles"
)

// ProjectDetailView shows one project with its tasks and chat log
type ProjectDetailView struct {
	project *models.Project
	tasks   []models.Task
	chat    []models.ChatMessage
	sender  string

	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	chatLog     viewport.Model
	chatInput   textinput.Model
	chatFocused bool
	pending     bool

	confirmingDelete bool
	showHelpPopup    bool
}

func NewProjectDetailView() *ProjectDetailView {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 500
	ti.Prompt = "> "

	return &ProjectDetailView{
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		chatLog:   viewport.New(0, 0),
		chatInput: ti,
	}
}

func (v *ProjectDetailView) Init() tea.Cmd {
	return nil
}

// Capturing reports whether keystrokes belong to the chat input or a dialog
func (v *ProjectDetailView) Capturing() bool {
	return v.chatFocused || v.confirmingDelete || v.showHelpPopup
}

// chatWidth is the outer width of the chat column
func (v *ProjectDetailView) chatWidth() int {
	return max(styles.ContentWidth(v.width)/2-1, 20)
}

func (v *ProjectDetailView) resize() {
	inner := v.chatWidth() - 2
	v.chatLog.Width = inner
	// title, input box, help and borders
	v.chatLog.Height = max(v.height-10, 3)
	v.chatInput.Width = max(inner-4, 10)
	v.refreshChat()
}

func (v *ProjectDetailView) refreshChat() {
	s := v.styles
	if len(v.chat) == 0 {
		v.chatLog.SetContent(s.TitleMuted.Render("No messages yet. Press 'c' to write one."))
		return
	}

	wrap := lipgloss.NewStyle().Width(max(v.chatLog.Width, 1))
	lines := make([]string, 0, len(v.chat))
	for _, m := range v.chat {
		header := s.ChatUser.Render(m.User) + " " + s.TitleMuted.Render(m.CreatedAt.Local().Format("Jan 2 15:04"))
		lines = append(lines, wrap.Render(header+"\n"+m.Msg))
	}
	v.chatLog.SetContent(strings.Join(lines, "\n\n"))
	v.chatLog.GotoBottom()
}

func (v *ProjectDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.resize()
		return v, nil

	case ScreenMsg:
		if v.project == nil || msg.Screen.Project == nil || v.project.ID != msg.Screen.Project.ID {
			v.chatFocused = false
			v.chatInput.Blur()
			v.chatInput.Reset()
			v.confirmingDelete = false
		}
		v.project = msg.Screen.Project
		v.tasks = msg.Screen.ProjectTasks
		v.chat = msg.Screen.Chat
		v.sender = msg.Screen.Sender
		v.refreshChat()
		return v, nil

	case IntentDone:
		if v.pending {
			v.pending = false
			if msg.Err == nil {
				v.chatInput.Reset()
			}
		}
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.chatFocused {
			return v.updateChat(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *ProjectDetailView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, emit(CloseProject{})
	case key.Matches(msg, v.keys.Chat):
		v.chatFocused = true
		return v, v.chatInput.Focus()
	case key.Matches(msg, v.keys.Delete):
		if v.project != nil {
			v.confirmingDelete = true
		}
		return v, nil
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	// Remaining keys scroll the chat log
	var cmd tea.Cmd
	v.chatLog, cmd = v.chatLog.Update(msg)
	return v, cmd
}

func (v *ProjectDetailView) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.chatFocused = false
		v.chatInput.Blur()
		return v, nil
	case "enter":
		v.pending = true
		return v, emit(SendMessage{Text: v.chatInput.Value()})
	}

	var cmd tea.Cmd
	v.chatInput, cmd = v.chatInput.Update(msg)
	return v, cmd
}

func (v *ProjectDetailView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, emit(DeleteProject{ID: v.project.ID})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

// View renders the view
func (v *ProjectDetailView) View() string {
	if v.project == nil {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return renderConfirm(v.styles, v.width, v.height,
			"Delete Project?",
			fmt.Sprintf("\"%s\", its tasks and its chat log will be removed.", v.project.Name),
		)
	}

	leftWidth := max(styles.ContentWidth(v.width)-v.chatWidth()-1, 20)
	left := lipgloss.JoinVertical(lipgloss.Left,
		v.renderDetails(leftWidth),
		v.renderTasks(leftWidth),
		v.renderEmployees(leftWidth),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", v.renderChat())
	content := lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("← "+v.project.Name),
		"",
		body,
		v.renderHelp(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectDetailView) renderDetails(width int) string {
	s := v.styles
	p := v.project
	inner := width - 4

	field := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return s.Label.Render(label+": ") + truncate(value, max(inner-len(label)-2, 1))
	}

	lines := []string{
		s.Title.Render("Job Details"),
		field("Duration", p.Duration),
		field("Phase", p.Phase),
		styles.ProgressBar(p.Progress, inner),
	}
	if p.Details != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(inner).Render(p.Details))
	}
	return s.Panel.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *ProjectDetailView) renderTasks(width int) string {
	s := v.styles
	inner := width - 4

	lines := []string{s.Title.Render(fmt.Sprintf("Tasks (%d)", len(v.tasks)))}
	if len(v.tasks) == 0 {
		lines = append(lines, s.TitleMuted.Render("No tasks for this project"))
	}
	for _, t := range v.tasks {
		assignee := t.Employee
		if assignee == "" {
			assignee = "unassigned"
		}
		line := fmt.Sprintf("%3d%%  %s", t.Progress, t.Title)
		lines = append(lines,
			truncate(line, inner),
			s.TitleMuted.Render(truncate("      "+assignee, inner)),
		)
	}
	return s.Panel.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// involved lists the distinct assignees of the project's tasks in task order
func (v *ProjectDetailView) involved() []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range v.tasks {
		if t.Employee == "" || seen[t.Employee] {
			continue
		}
		seen[t.Employee] = true
		names = append(names, t.Employee)
	}
	return names
}

func (v *ProjectDetailView) renderEmployees(width int) string {
	s := v.styles
	names := v.involved()

	lines := []string{s.Title.Render("Employees Involved")}
	if len(names) == 0 {
		lines = append(lines, s.TitleMuted.Render("Nobody assigned yet"))
	}
	for _, n := range names {
		lines = append(lines, "• "+truncate(n, width-6))
	}
	return s.Panel.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *ProjectDetailView) renderChat() string {
	s := v.styles

	inputStyle := s.Input
	if v.chatFocused {
		inputStyle = s.InputFocused
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(" Project Chat"),
		v.chatLog.View(),
		inputStyle.Width(v.chatLog.Width-2).Render(v.chatInput.View()),
		s.TitleMuted.Render(" sending as "+v.sender),
	)
	return s.ChatBox.Width(v.chatWidth() - 2).Render(content)
}

func (v *ProjectDetailView) renderHelp() string {
	s := v.styles
	if v.chatFocused {
		return s.Help.Render(fmt.Sprintf("%s send • %s done",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("esc"),
		))
	}
	return s.Help.Render(fmt.Sprintf("%s back • %s chat • %s scroll • %s delete • %s help",
		s.HelpKey.Render("esc"),
		s.HelpKey.Render("c"),
		s.HelpKey.Render("↑↓"),
		s.HelpKey.Render("d"),
		s.HelpKey.Render("?"),
	))
}

func (v *ProjectDetailView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard Shortcuts"),
		"",
		s.HelpKey.Render("esc")+"    back to projects",
		s.HelpKey.Render("c/i")+"    write a message",
		s.HelpKey.Render("↵")+"      send message",
		s.HelpKey.Render("↑↓")+"     scroll chat",
		s.HelpKey.Render("d")+"      delete project",
		"",
		s.TitleMuted.Render("Press any key to close"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
