package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskbox/internal/nav"
	"github.com/tgienger/taskbox/internal/ui/styles"
)

// PlaceholderView stands in for sections that have no content yet
type PlaceholderView struct {
	section nav.Section
	styles  *styles.Styles
	width   int
	height  int
}

func NewPlaceholderView() *PlaceholderView {
	return &PlaceholderView{styles: styles.NewStyles()}
}

func (v *PlaceholderView) Init() tea.Cmd {
	return nil
}

func (v *PlaceholderView) Capturing() bool {
	return false
}

func (v *PlaceholderView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	case ScreenMsg:
		v.section = msg.Screen.Section
	}
	return v, nil
}

func (v *PlaceholderView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render(v.section.Title()),
		"",
		s.TitleMuted.Render(v.section.Title()+" module is ready for integration."),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Padding(1, 4).Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
