package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sirupsen/logrus"
	"github.com/tgienger/taskbox/internal/nav"
	"github.com/tgienger/taskbox/internal/session"
	"github.com/tgienger/taskbox/internal/ui/keys"
	"github.com/tgienger/taskbox/internal/ui/styles"
	"github.com/tgienger/taskbox/internal/ui/views"
)

// view is a page of the main pane
type view interface {
	tea.Model
	// Capturing reports whether the page is consuming keystrokes (forms, dialogs)
	Capturing() bool
}

// App is the root model. Intents from the pages run synchronously against
// the session, so the session is only ever touched from Update.
type App struct {
	session *session.Session
	log     logrus.FieldLogger
	screen  *session.Screen
	keys    keys.KeyMap
	styles  *styles.Styles

	grid        *views.ProjectGridView
	detail      *views.ProjectDetailView
	employees   *views.EmployeeListView
	tasks       *views.TaskListView
	placeholder *views.PlaceholderView

	width  int
	height int

	status      string
	statusStyle lipgloss.Style
}

// NewApp creates a new application
func NewApp(sess *session.Session, log logrus.FieldLogger) *App {
	s := styles.NewStyles()
	return &App{
		session:     sess,
		log:         log,
		keys:        keys.DefaultKeyMap(),
		styles:      s,
		grid:        views.NewProjectGridView(),
		detail:      views.NewProjectDetailView(),
		employees:   views.NewEmployeeListView(),
		tasks:       views.NewTaskListView(),
		placeholder: views.NewPlaceholderView(),
		statusStyle: s.StatusBar,
	}
}

// Screen returns the last computed screen
func (a *App) Screen() *session.Screen {
	return a.screen
}

func (a *App) Init() tea.Cmd {
	// Reopen where the last run left off
	a.session.Restore()
	a.reload()
	return nil
}

func (a *App) pages() []view {
	return []view{a.grid, a.detail, a.employees, a.tasks, a.placeholder}
}

// active returns the page for the current screen
func (a *App) active() view {
	if a.screen == nil {
		return a.grid
	}
	switch a.screen.Section {
	case nav.SectionProjects:
		if a.screen.ProjectView == session.ViewDetail {
			return a.detail
		}
		return a.grid
	case nav.SectionEmployees:
		return a.employees
	case nav.SectionTasks:
		return a.tasks
	}
	return a.placeholder
}

// reload recomputes the screen and hands it to the active page
func (a *App) reload() tea.Cmd {
	sc, err := a.session.Screen()
	if err != nil {
		a.setError(err)
		return nil
	}
	a.screen = sc
	_, cmd := a.active().Update(views.ScreenMsg{Screen: sc})
	return cmd
}

func (a *App) mainSize() tea.WindowSizeMsg {
	// Sidebar plus its right border, and the status line
	return tea.WindowSizeMsg{
		Width:  max(a.width-styles.SidebarWidth-1, 0),
		Height: max(a.height-1, 0),
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		size := a.mainSize()
		for _, p := range a.pages() {
			p.Update(size)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.active().Capturing() {
			if cmd, handled := a.handleGlobalKey(msg); handled {
				return a, cmd
			}
		}

	case views.SelectSection, views.OpenProject, views.CloseProject,
		views.CreateProject, views.DeleteProject,
		views.CreateEmployee, views.DeleteEmployee,
		views.CreateTask, views.DeleteTask, views.SendMessage:
		return a, a.handleIntent(msg)
	}

	_, cmd := a.active().Update(msg)
	return a, cmd
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, a.keys.NextSection):
		return a.handleIntent(views.SelectSection{Section: a.stepSection(1)}), true
	case key.Matches(msg, a.keys.PrevSection):
		return a.handleIntent(views.SelectSection{Section: a.stepSection(-1)}), true
	}

	// 1-9 and 0 jump straight to a section
	if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		n, _ := strconv.Atoi(s)
		idx := (n + 9) % 10
		if idx < len(nav.Sections) {
			return a.handleIntent(views.SelectSection{Section: nav.Sections[idx]}), true
		}
	}
	return nil, false
}

func (a *App) stepSection(dir int) nav.Section {
	cur := nav.SectionProjects
	if a.screen != nil {
		cur = a.screen.Section
	}
	n := len(nav.Sections)
	for i, s := range nav.Sections {
		if s == cur {
			return nav.Sections[(i+dir+n)%n]
		}
	}
	return cur
}

// handleIntent runs one intent, reports the outcome to the page that sent
// it and reloads the screen
func (a *App) handleIntent(msg tea.Msg) tea.Cmd {
	origin := a.active()

	status, err := a.apply(msg)
	if err != nil {
		a.setError(err)
	} else {
		a.setStatus(status)
	}

	_, doneCmd := origin.Update(views.IntentDone{Err: err})
	return tea.Batch(doneCmd, a.reload())
}

// apply forwards an intent to the session and returns a status line on success
func (a *App) apply(msg tea.Msg) (string, error) {
	s := a.session
	switch m := msg.(type) {
	case views.SelectSection:
		return "", s.SelectSection(m.Section)
	case views.OpenProject:
		return "", s.OpenProject(m.ID)
	case views.CloseProject:
		return "", s.CloseProject()
	case views.CreateProject:
		p, err := s.CreateProject(m.Input)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Project %q launched", p.Name), nil
	case views.DeleteProject:
		return "Project deleted", s.DeleteProject(m.ID)
	case views.CreateEmployee:
		e, err := s.CreateEmployee(m.Name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Added %s", e.Name), nil
	case views.DeleteEmployee:
		return "Employee removed", s.DeleteEmployee(m.ID)
	case views.CreateTask:
		t, err := s.CreateTask(m.Input)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Task %q created", t.Title), nil
	case views.DeleteTask:
		return "Task deleted", s.DeleteTask(m.ID)
	case views.SendMessage:
		return "", s.SendMessage(m.Text)
	}
	return "", nil
}

func (a *App) setStatus(text string) {
	a.status = text
	a.statusStyle = a.styles.StatusBar
}

func (a *App) setError(err error) {
	if session.IsUserError(err) {
		a.status = err.Error()
		a.statusStyle = a.styles.StatusWarn
		a.log.WithError(err).Debug("action rejected")
		return
	}

	entry := a.log.WithError(err)
	var ge *goerr.Error
	if errors.As(err, &ge) {
		entry = entry.WithField("values", ge.Values())
	}
	entry.Error("action failed")
	a.status = "Error: " + err.Error()
	a.statusStyle = a.styles.StatusError
}

func (a *App) View() string {
	if a.screen == nil {
		if a.status != "" {
			return a.statusStyle.Render(a.status)
		}
		return a.styles.TitleMuted.Render("Loading...")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(), a.active().View())
	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderStatus())
}

func (a *App) renderSidebar() string {
	s := a.styles
	lines := []string{s.Title.Render(" taskbox"), ""}
	for i, sec := range a.screen.Sections {
		hotkey := strconv.Itoa((i + 1) % 10)
		label := truncate(sec.Title(), styles.SidebarWidth-6)
		if sec == a.screen.Section {
			lines = append(lines, s.SidebarSelected.Width(styles.SidebarWidth-2).Render(hotkey+" "+label))
		} else {
			lines = append(lines, s.SidebarItem.Render(s.TitleMuted.Render(hotkey)+" "+label))
		}
	}
	return s.Sidebar.Height(max(a.height-1, 0)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderStatus() string {
	if a.status != "" {
		return a.statusStyle.Render(a.status)
	}
	return a.styles.StatusBar.Render(fmt.Sprintf("%s section • %s quit • chatting as %s",
		a.styles.HelpKey.Render("[ ]/1-0"),
		a.styles.HelpKey.Render("q"),
		a.screen.Sender,
	))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:max(width-1, 0)]) + "…"
}
