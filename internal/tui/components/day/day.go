// Package day renders the activities logged on one calendar day.
package day

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daylog/internal/aggregate"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/validation"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	habitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	hoursStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(8).
			Align(lipgloss.Right)

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

type Model struct {
	viewport   viewport.Model
	Date       string
	Activities []models.Activity
	loaded     bool
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.loaded {
		return "Select a day on the grid and press enter."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetDay replaces the displayed activities.
func (m *Model) SetDay(date string, activities []models.Activity) {
	m.Date = date
	m.Activities = activities
	m.loaded = true
	m.viewport.GotoTop()
	m.Render()
}

func (m *Model) Render() {
	if !m.loaded {
		return
	}
	var b strings.Builder
	groups := aggregate.GroupByCategory(m.Activities)
	var total float64
	for _, g := range groups {
		total += g.Hours
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  %s", m.Date, validation.FormatHours(total))))
	b.WriteString("\n\n")

	if len(groups) == 0 {
		b.WriteString("Nothing logged.\n")
	}
	for _, g := range groups {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			hoursStyle.Render(validation.FormatHours(g.Hours)),
			g.Emoji,
			habitStyle.Render(g.Category)))
		for _, a := range g.Activities {
			desc := a.Description
			if desc == "" {
				desc = "(no description)"
			}
			b.WriteString(fmt.Sprintf("%s   %s\n",
				hoursStyle.Render(validation.FormatHours(a.Hours)),
				descStyle.Render(desc)))
		}
	}
	m.viewport.SetContent(b.String())
}
