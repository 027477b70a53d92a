package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daylog/internal/aggregate"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		bodyHeight := msg.Height - 6
		if bodyHeight < 1 {
			bodyHeight = 1
		}
		m.dayModel.SetSize(msg.Width-4, bodyHeight)
		m.habitList.SetSize(msg.Width-4, bodyHeight)
		return m, nil

	case dataLoadedMsg:
		m.err = nil
		keepCursor := len(m.grid) == len(msg.grid) && len(m.grid) > 0
		m.grid = msg.grid
		m.stats = aggregate.GridStats(msg.grid)
		if !keepCursor {
			m.cursor = len(msg.grid) - 1
		}
		m.habitList.SetHabits(msg.habits, msg.totals)
		return m, nil

	case dayLoadedMsg:
		m.err = nil
		m.dayModel.SetDay(msg.date, msg.activities)
		m.state = StateDay
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % stateCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + stateCount) % stateCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadData()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateGrid:
		if k, ok := msg.(tea.KeyMsg); ok {
			return m.updateGrid(k)
		}
	case StateDay:
		m.dayModel, cmd = m.dayModel.Update(msg)
	case StateHabits:
		m.habitList, cmd = m.habitList.Update(msg)
	}
	return m, cmd
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-7)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(7)
	case key.Matches(msg, m.keys.Today):
		m.cursor = len(m.grid) - 1
	case key.Matches(msg, m.keys.Enter):
		if d, ok := m.Selected(); ok {
			return m, m.loadDay(d.Date)
		}
	}
	return m, nil
}
