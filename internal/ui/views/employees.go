package views

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskbox/internal/models"
	"github.com/tgienger/taskbox/internal/ui/keys"
	"github.com/tgienger/taskbox/internal/ui/styles"
)

type employeeItem struct {
	employee models.Employee
}

func (i employeeItem) Title() string { return i.employee.Name }
func (i employeeItem) Description() string {
	return fmt.Sprintf("#%d • joined %s", i.employee.ID, i.employee.CreatedAt.Local().Format("Jan 2, 2006"))
}
func (i employeeItem) FilterValue() string { return i.employee.Name }

type employeeDelegate struct {
	styles *styles.Styles
	width  int
}

func (d employeeDelegate) Height() int                               { return 2 }
func (d employeeDelegate) Spacing() int                              { return 1 }
func (d employeeDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d employeeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	e, ok := item.(employeeItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(e.Title()), descStyle.Render(e.Description()))
}

// EmployeeListView is the team directory
type EmployeeListView struct {
	list     list.Model
	delegate *employeeDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool

	creating bool
	pending  bool
	newName  textinput.Model

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string
}

func NewEmployeeListView() *EmployeeListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Full name"
	newName.CharLimit = 100

	delegate := &employeeDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Employees"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return &EmployeeListView{
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
	}
}

func (v *EmployeeListView) Init() tea.Cmd {
	return nil
}

// Capturing reports whether keystrokes belong to a form, the filter or a dialog
func (v *EmployeeListView) Capturing() bool {
	return v.creating || v.confirmingDelete || v.list.FilterState() == list.Filtering
}

func (v *EmployeeListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-4)
		return v, nil

	case ScreenMsg:
		items := make([]list.Item, len(msg.Screen.Employees))
		for i, e := range msg.Screen.Employees {
			items[i] = employeeItem{employee: e}
		}
		v.loaded = true
		return v, v.list.SetItems(items)

	case IntentDone:
		if v.pending {
			v.pending = false
			if msg.Err == nil {
				v.creating = false
			}
		}
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		// Let the list own keys while its filter is being typed
		if v.list.FilterState() == list.Filtering {
			var cmd tea.Cmd
			v.list, cmd = v.list.Update(msg)
			return v, cmd
		}

		switch {
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.pending = false
			v.newName.Reset()
			return v, v.newName.Focus()
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(employeeItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.employee.ID
				v.deleteTargetName = item.employee.Name
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *EmployeeListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.creating = false
		v.newName.Blur()
		return v, nil
	case "enter", "ctrl+s":
		v.pending = true
		return v, emit(CreateEmployee{Name: v.newName.Value()})
	}

	var cmd tea.Cmd
	v.newName, cmd = v.newName.Update(msg)
	return v, cmd
}

func (v *EmployeeListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, emit(DeleteEmployee{ID: v.deleteTargetID})
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

// View renders the view
func (v *EmployeeListView) View() string {
	s := v.styles

	if v.confirmingDelete {
		return renderConfirm(s, v.width, v.height,
			"Remove Employee?",
			fmt.Sprintf("\"%s\" will be unassigned from all tasks.", v.deleteTargetName),
		)
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("Employees"),
			"",
			s.TitleMuted.Render("No employees yet. Press 'n' to add one."),
		)
		return styles.CenterView(content, v.width, v.height)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.list.View(),
		s.Help.Render(fmt.Sprintf("%s add • %s remove • %s filter",
			s.HelpKey.Render("n"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("/"),
		)),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *EmployeeListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Add Employee"),
		"",
		"Name:",
		s.InputFocused.Width(inputWidth).Render(v.newName.View()),
		"",
		s.TitleMuted.Render("Enter: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
