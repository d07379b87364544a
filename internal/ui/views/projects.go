package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskbox/internal/models"
	"github.com/tgienger/taskbox/internal/ui/keys"
	"github.com/tgienger/taskbox/internal/ui/styles"
)

const (
	cardWidth = 26
	maxCols   = 4
)

// Create-form field order
const (
	projectFieldName = iota
	projectFieldDuration
	projectFieldPhase
	projectFieldProgress
	projectFieldDetails
	projectFieldSubmit
	projectFieldCount
)

// ProjectGridView shows projects as a grid of cards
type ProjectGridView struct {
	projects []models.Project
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	cursor   int
	loaded   bool

	creating bool
	pending  bool
	inputs   []textinput.Model // indexed by projectField*
	focusIdx int

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

func NewProjectGridView() *ProjectGridView {
	placeholders := []struct {
		text  string
		limit int
	}{
		{"Project name", 100},
		{"Estimated duration, e.g. 6 weeks", 50},
		{"Current phase, e.g. Framing", 50},
		{"0-100", 3},
		{"Details (optional)", 500},
	}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = p.text
		inputs[i].CharLimit = p.limit
	}

	return &ProjectGridView{
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		inputs: inputs,
	}
}

func (v *ProjectGridView) Init() tea.Cmd {
	return nil
}

// Capturing reports whether keystrokes belong to a form or dialog
func (v *ProjectGridView) Capturing() bool {
	return v.creating || v.confirmingDelete || v.showHelpPopup
}

func (v *ProjectGridView) columns() int {
	return clamp(styles.ContentWidth(v.width)/(cardWidth+2), 1, maxCols)
}

func (v *ProjectGridView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case ScreenMsg:
		v.projects = msg.Screen.Projects
		v.loaded = true
		if v.cursor >= len(v.projects) {
			v.cursor = max(0, len(v.projects)-1)
		}
		return v, nil

	case IntentDone:
		if v.pending {
			v.pending = false
			if msg.Err == nil {
				v.creating = false
			}
		}
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		return v.updateGrid(msg)
	}

	return v, nil
}

func (v *ProjectGridView) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := v.columns()

	switch {
	case key.Matches(msg, v.keys.New):
		v.startCreate()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	case key.Matches(msg, v.keys.Left):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Right):
		if v.cursor < len(v.projects)-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.Up):
		if v.cursor-cols >= 0 {
			v.cursor -= cols
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor+cols < len(v.projects) {
			v.cursor += cols
		}
	case key.Matches(msg, v.keys.Enter):
		if len(v.projects) > 0 {
			return v, emit(OpenProject{ID: v.projects[v.cursor].ID})
		}
	case key.Matches(msg, v.keys.Delete):
		if len(v.projects) > 0 {
			v.confirmingDelete = true
			v.deleteTargetID = v.projects[v.cursor].ID
			v.deleteTargetName = v.projects[v.cursor].Name
		}
	}
	return v, nil
}

func (v *ProjectGridView) startCreate() {
	v.creating = true
	v.pending = false
	v.focusIdx = projectFieldName
	for i := range v.inputs {
		v.inputs[i].Reset()
	}
	v.updateFocus()
}

func (v *ProjectGridView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, emit(DeleteProject{ID: v.deleteTargetID})
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectGridView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc":
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.submit()

	case key.Matches(msg, v.keys.ShiftTab):
		v.focusIdx = (v.focusIdx + projectFieldCount - 1) % projectFieldCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % projectFieldCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == projectFieldSubmit {
			return v, v.submit()
		}
		v.focusIdx++
		v.updateFocus()
		return v, nil
	}

	if v.focusIdx < len(v.inputs) {
		var cmd tea.Cmd
		v.inputs[v.focusIdx], cmd = v.inputs[v.focusIdx].Update(msg)
		return v, cmd
	}
	return v, nil
}

// submit forwards the form; it stays open until the app reports success
func (v *ProjectGridView) submit() tea.Cmd {
	progress, _ := strconv.Atoi(strings.TrimSpace(v.inputs[projectFieldProgress].Value()))
	v.pending = true
	return emit(CreateProject{Input: models.ProjectInput{
		Name:     v.inputs[projectFieldName].Value(),
		Duration: v.inputs[projectFieldDuration].Value(),
		Phase:    v.inputs[projectFieldPhase].Value(),
		Progress: progress,
		Details:  v.inputs[projectFieldDetails].Value(),
	}})
}

func (v *ProjectGridView) updateFocus() {
	for i := range v.inputs {
		if i == v.focusIdx {
			v.inputs[i].Focus()
		} else {
			v.inputs[i].Blur()
		}
	}
}

// View renders the view
func (v *ProjectGridView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.projects) == 0 {
		return v.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("Projects Dashboard"),
		"",
		v.renderGrid(),
		v.renderHelp(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectGridView) renderGrid() string {
	cols := v.columns()
	var rows []string
	for start := 0; start < len(v.projects); start += cols {
		end := min(start+cols, len(v.projects))
		var cards []string
		for i := start; i < end; i++ {
			cards = append(cards, v.renderCard(v.projects[i], i == v.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *ProjectGridView) renderCard(p models.Project, selected bool) string {
	s := v.styles
	style := s.Card
	if selected {
		style = s.CardSelected
	}
	inner := cardWidth - 4

	phase := p.Phase
	if phase == "" {
		phase = "-"
	}

	return style.Width(cardWidth - 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		s.CardTitle.Render(truncate(p.Name, inner)),
		s.TitleMuted.Render(truncate("Phase: "+phase, inner)),
		styles.ProgressBar(p.Progress, inner),
	))
}

func (v *ProjectGridView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("No projects yet. Press 'n' to create one!"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectGridView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	labels := []string{"Name:", "Estimated Duration:", "Current Phase:", "Phase Progress %:", "Details:"}
	lines := []string{s.Title.Render("Create New Project"), ""}
	for i, label := range labels {
		style := s.Input
		if v.focusIdx == i {
			style = s.InputFocused
		}
		lines = append(lines, label, style.Width(inputWidth).Render(v.inputs[i].View()))
	}

	btnStyle := s.Button
	if v.focusIdx == projectFieldSubmit {
		btnStyle = s.ButtonFocused
	}
	lines = append(lines,
		"",
		btnStyle.Render(" Launch Project "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectGridView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s del • %s section • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("[ ]"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectGridView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("←↑↓→") + "   move between cards",
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("d") + "      delete project",
		s.HelpKey.Render("[ ]") + "    switch section",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectGridView) renderDeleteConfirm() string {
	return renderConfirm(v.styles, v.width, v.height,
		"Delete Project?",
		fmt.Sprintf("\"%s\", its tasks and its chat log will be removed.", v.deleteTargetName),
	)
}
