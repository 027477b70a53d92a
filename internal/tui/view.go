package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daylog/internal/aggregate"
	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/validation"
)

const cellWidth = 2

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateGrid:
		content = docStyle.Render(m.viewGrid())
	case StateDay:
		content = docStyle.Render(m.dayModel.View())
	case StateHabits:
		content = docStyle.Render(m.habitList.View())
	}

	parts := []string{m.viewTabs(), content}
	if m.err != nil {
		parts = append(parts, dangerStyle.Render("Error: "+m.err.Error()))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Grid", "Day", "Habits"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// gridOffset is the weekday (Sunday first) of the oldest grid day, so rows line up with weekdays.
func gridOffset(grid []aggregate.GridDay) int {
	if len(grid) == 0 {
		return 0
	}
	t, err := time.Parse(constants.DateFormat, grid[0].Date)
	if err != nil {
		return 0
	}
	return int(t.Weekday())
}

func (m Model) viewGrid() string {
	if len(m.grid) == 0 {
		return mutedStyle.Render("Loading…")
	}

	offset := gridOffset(m.grid)
	totalCols := (offset + len(m.grid) + 6) / 7
	cursorCol := (offset + m.cursor) / 7

	visibleCols := totalCols
	if m.width > 0 {
		visibleCols = (m.width - 4) / cellWidth
		if visibleCols < 1 {
			visibleCols = 1
		}
	}
	startCol := 0
	if totalCols > visibleCols {
		startCol = totalCols - visibleCols
		if cursorCol < startCol {
			startCol = cursorCol
		}
	}

	endCol := startCol + visibleCols
	if endCol > totalCols {
		endCol = totalCols
	}
	lines := make([]string, 0, 7)
	for row := 0; row < 7; row++ {
		var line strings.Builder
		for col := startCol; col < endCol; col++ {
			i := col*7 + row - offset
			switch {
			case i < 0 || i >= len(m.grid):
				line.WriteString(strings.Repeat(" ", cellWidth))
			case i == m.cursor:
				line.WriteString(cursorStyle.Render("◆") + " ")
			default:
				line.WriteString(levelStyles[aggregate.Level(m.grid[i].Hours)].Render("■") + " ")
			}
		}
		lines = append(lines, line.String())
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")

	if d, ok := m.Selected(); ok {
		b.WriteString(fmt.Sprintf("%s  %s\n", d.Date, validation.FormatHours(d.Hours)))
		for _, s := range d.Summary {
			b.WriteString("  " + s + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d active days · %s total · streak %d (longest %d)",
		m.stats.ActiveDays, validation.FormatHours(m.stats.TotalHours), m.stats.CurrentStreak, m.stats.LongestStreak)))
	return b.String()
}
