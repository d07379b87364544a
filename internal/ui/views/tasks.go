package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskbox/internal/models"
	"github.com/tgienger/taskbox/internal/ui/keys"
	"github.com/tgienger/taskbox/internal/ui/styles"
)

// Edit-form field order
const (
	taskFieldTitle = iota
	taskFieldAssignee
	taskFieldProject
	taskFieldDuration
	taskFieldProgress
	taskFieldDetails
	taskFieldSave
	taskFieldCount
)

// TaskListView is the Tasks section: every task with its assignee and project
type TaskListView struct {
	tasks     []models.Task
	projects  []models.Project
	employees []models.Employee
	styles    *styles.Styles
	keys      keys.KeyMap
	table     table.Model

	width  int
	height int
	loaded bool

	// Task creation
	editing      bool
	pending      bool
	editTitle    textinput.Model
	editDuration textinput.Model
	editProgress textinput.Model
	editDetails  textarea.Model
	editFocusIdx int
	assigneeIdx  int // 0 = unassigned, otherwise employees[i-1]
	projectIdx   int // 0 = no project, otherwise projects[i-1]

	// Task view mode (read-only detail view)
	viewingTask bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView() *TaskListView {
	s := styles.NewStyles()

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDuration := textinput.New()
	editDuration.Placeholder = "e.g. 3 days"
	editDuration.CharLimit = 50

	editProgress := textinput.New()
	editProgress.Placeholder = "0-100"
	editProgress.CharLimit = 3

	editDetails := textarea.New()
	editDetails.Placeholder = "Details (optional)"
	editDetails.CharLimit = 1000
	editDetails.SetHeight(3)
	editDetails.ShowLineNumbers = false

	t := table.New(
		table.WithColumns(taskColumns(80)),
		table.WithFocused(true),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Current.Border).
		BorderBottom(true).
		Foreground(styles.Current.Secondary).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(styles.Current.Primary).
		Background(styles.Current.Selection).
		Bold(true)
	t.SetStyles(ts)

	return &TaskListView{
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		table:        t,
		editTitle:    editTitle,
		editDuration: editDuration,
		editProgress: editProgress,
		editDetails:  editDetails,
	}
}

// taskColumns splits width between the table columns
func taskColumns(width int) []table.Column {
	rest := max(width-10-8, 30)
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Task", Width: rest * 2 / 5},
		{Title: "Assignee", Width: rest / 4},
		{Title: "Project", Width: rest - rest*2/5 - rest/4},
		{Title: "Done", Width: 5},
	}
}

func (v *TaskListView) Init() tea.Cmd {
	return nil
}

// Capturing reports whether keystrokes belong to a form or dialog
func (v *TaskListView) Capturing() bool {
	return v.editing || v.viewingTask || v.confirmingDelete || v.showHelpPopup
}

func (v *TaskListView) projectName(id *int64) string {
	if id == nil {
		return ""
	}
	for _, p := range v.projects {
		if p.ID == *id {
			return p.Name
		}
	}
	return ""
}

func (v *TaskListView) setRows() {
	rows := make([]table.Row, len(v.tasks))
	for i, t := range v.tasks {
		assignee := t.Employee
		if assignee == "" {
			assignee = "-"
		}
		project := v.projectName(t.ProjectID)
		if project == "" {
			project = "-"
		}
		rows[i] = table.Row{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			assignee,
			project,
			fmt.Sprintf("%d%%", t.Progress),
		}
	}
	v.table.SetRows(rows)
	// An empty table parks the cursor at -1
	switch {
	case len(rows) == 0:
	case v.table.Cursor() < 0:
		v.table.SetCursor(0)
	case v.table.Cursor() >= len(rows):
		v.table.SetCursor(len(rows) - 1)
	}
}

func (v *TaskListView) selected() (models.Task, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[i], true
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.table.SetColumns(taskColumns(contentWidth))
		v.table.SetWidth(contentWidth - 2)
		v.table.SetHeight(max(msg.Height-8, 3))
		v.editDetails.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case ScreenMsg:
		v.tasks = msg.Screen.Tasks
		v.projects = msg.Screen.Projects
		v.employees = msg.Screen.Employees
		v.loaded = true
		v.setRows()
		// Keep pickers in range when the lists shrink
		if v.assigneeIdx > len(v.employees) {
			v.assigneeIdx = 0
		}
		if v.projectIdx > len(v.projects) {
			v.projectIdx = 0
		}
		return v, nil

	case IntentDone:
		if v.pending {
			v.pending = false
			if msg.Err == nil {
				v.editing = false
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

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.viewingTask {
			if key.Matches(msg, v.keys.Back) || key.Matches(msg, v.keys.Enter) {
				v.viewingTask = false
			}
			return v, nil
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Enter):
		if _, ok := v.selected(); ok {
			v.viewingTask = true
		}
		return v, nil
	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Title
		}
		return v, nil
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, emit(DeleteTask{ID: v.deleteTargetID})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc":
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % taskFieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.editFocusIdx = (v.editFocusIdx + taskFieldCount - 1) % taskFieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case taskFieldSave:
			return v, v.saveTask()
		case taskFieldDetails:
			// newline in the textarea
		default:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}

	case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Right):
		dir := 1
		if key.Matches(msg, v.keys.Left) {
			dir = -1
		}
		// Pickers cycle through "none" plus each entry
		switch v.editFocusIdx {
		case taskFieldAssignee:
			n := len(v.employees) + 1
			v.assigneeIdx = (v.assigneeIdx + dir + n) % n
			return v, nil
		case taskFieldProject:
			n := len(v.projects) + 1
			v.projectIdx = (v.projectIdx + dir + n) % n
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case taskFieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case taskFieldDuration:
		v.editDuration, cmd = v.editDuration.Update(msg)
	case taskFieldProgress:
		v.editProgress, cmd = v.editProgress.Update(msg)
	case taskFieldDetails:
		v.editDetails, cmd = v.editDetails.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.pending = false
	v.editFocusIdx = taskFieldTitle
	v.assigneeIdx = 0
	v.projectIdx = 0
	v.editTitle.Reset()
	v.editDuration.Reset()
	v.editProgress.SetValue("0")
	v.editDetails.Reset()
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDuration.Blur()
	v.editProgress.Blur()
	v.editDetails.Blur()

	switch v.editFocusIdx {
	case taskFieldTitle:
		v.editTitle.Focus()
	case taskFieldDuration:
		v.editDuration.Focus()
	case taskFieldProgress:
		v.editProgress.Focus()
	case taskFieldDetails:
		v.editDetails.Focus()
	}
}

func (v *TaskListView) assigneeID() *int64 {
	if v.assigneeIdx == 0 || v.assigneeIdx > len(v.employees) {
		return nil
	}
	id := v.employees[v.assigneeIdx-1].ID
	return &id
}

func (v *TaskListView) projectID() *int64 {
	if v.projectIdx == 0 || v.projectIdx > len(v.projects) {
		return nil
	}
	id := v.projects[v.projectIdx-1].ID
	return &id
}

// saveTask forwards the form; it stays open until the app reports success
func (v *TaskListView) saveTask() tea.Cmd {
	progress, _ := strconv.Atoi(strings.TrimSpace(v.editProgress.Value()))
	v.pending = true
	return emit(CreateTask{Input: models.TaskInput{
		Title:      v.editTitle.Value(),
		EmployeeID: v.assigneeID(),
		ProjectID:  v.projectID(),
		Duration:   v.editDuration.Value(),
		Progress:   progress,
		Details:    v.editDetails.Value(),
	}})
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return renderConfirm(v.styles, v.width, v.height,
			"Delete Task?",
			fmt.Sprintf("\"%s\" will be removed.", v.deleteTargetName),
		)
	}

	if v.editing {
		return v.renderEditForm()
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	s := v.styles
	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("Tasks (%d)", len(v.tasks))))
	b.WriteString("\n\n")
	if len(v.tasks) == 0 {
		b.WriteString(s.TitleMuted.Render("No tasks yet. Press 'n' to create one."))
	} else {
		b.WriteString(v.table.View())
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderPicker(label string, focused bool) string {
	s := v.styles
	style := s.Input
	if focused {
		style = s.InputFocused
	}
	arrows := s.TitleMuted
	if focused {
		arrows = s.HelpKey
	}
	return style.Render(arrows.Render("‹ ") + label + arrows.Render(" ›"))
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	input := func(idx int, view string) string {
		style := s.Input
		if v.editFocusIdx == idx {
			style = s.InputFocused
		}
		return style.Width(inputWidth).Render(view)
	}

	assignee := "Unassigned"
	if v.assigneeIdx > 0 && v.assigneeIdx <= len(v.employees) {
		assignee = v.employees[v.assigneeIdx-1].Name
	}
	project := "No project"
	if v.projectIdx > 0 && v.projectIdx <= len(v.projects) {
		project = v.projects[v.projectIdx-1].Name
	}

	saveStyle := s.Button
	if v.editFocusIdx == taskFieldSave {
		saveStyle = s.ButtonFocused
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Task"),
		"",
		"Title:",
		input(taskFieldTitle, v.editTitle.View()),
		"Assignee:",
		v.renderPicker(truncate(assignee, inputWidth-6), v.editFocusIdx == taskFieldAssignee),
		"Project:",
		v.renderPicker(truncate(project, inputWidth-6), v.editFocusIdx == taskFieldProject),
		"Duration:",
		input(taskFieldDuration, v.editDuration.View()),
		"Progress %:",
		input(taskFieldProgress, v.editProgress.View()),
		"Details:",
		input(taskFieldDetails, v.editDetails.View()),
		"",
		saveStyle.Render(" Save Task "),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: choose • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderTaskView() string {
	s := v.styles
	t, ok := v.selected()
	if !ok {
		return ""
	}
	contentWidth := styles.ContentWidth(v.width)
	inner := clamp(contentWidth-8, 20, 70)

	orDash := func(val string) string {
		if val == "" {
			return "-"
		}
		return val
	}

	lines := []string{
		s.Title.Render(t.Title),
		"",
		s.Label.Render("Assignee: ") + orDash(t.Employee),
		s.Label.Render("Project:  ") + orDash(v.projectName(t.ProjectID)),
		s.Label.Render("Duration: ") + orDash(t.Duration),
		styles.ProgressBar(t.Progress, inner),
	}
	if t.Details != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(inner).Render(t.Details))
	}
	lines = append(lines, "", s.TitleMuted.Render("Esc: back"))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s view • %s new • %s delete • %s section",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("[ ]"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard Shortcuts"),
		"",
		s.HelpKey.Render("↑↓")+"     move",
		s.HelpKey.Render("↵")+"      view task",
		s.HelpKey.Render("n")+"      new task",
		s.HelpKey.Render("d")+"      delete task",
		s.HelpKey.Render("[ ]")+"    switch section",
		"",
		s.TitleMuted.Render("Press any key to close"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
