// Package tui is a terminal browser for the rolling activity grid.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daylog/internal/aggregate"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/tui/components/day"
	"github.com/julianstephens/daylog/internal/tui/components/habitlist"
)

// Source is the read side of the tracker the browser needs.
type Source interface {
	Grid(ctx context.Context, userID string) ([]aggregate.GridDay, error)
	ListActivities(ctx context.Context, userID, date string) ([]models.Activity, error)
	Habits(ctx context.Context, userID string) ([]models.Habit, error)
	Totals(ctx context.Context, userID string, byClassification bool) ([]aggregate.Total, error)
}

type SessionState int

const (
	StateGrid SessionState = iota
	StateDay
	StateHabits
)

const stateCount = 3

type dataLoadedMsg struct {
	grid   []aggregate.GridDay
	habits []models.Habit
	totals []aggregate.Total
}

type dayLoadedMsg struct {
	date       string
	activities []models.Activity
}

type errMsg struct{ err error }

type Model struct {
	ctx       context.Context
	source    Source
	userID    string
	state     SessionState
	keys      KeyMap
	help      help.Model
	grid      []aggregate.GridDay
	stats     aggregate.Stats
	cursor    int
	dayModel  day.Model
	habitList habitlist.Model
	err       error
	quitting  bool
	width     int
	height    int
}

func NewModel(ctx context.Context, source Source, userID string) Model {
	return Model{
		ctx:       ctx,
		source:    source,
		userID:    userID,
		state:     StateGrid,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		dayModel:  day.New(0, 0),
		habitList: habitlist.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadData()
}

func (m Model) loadData() tea.Cmd {
	return func() tea.Msg {
		grid, err := m.source.Grid(m.ctx, m.userID)
		if err != nil {
			return errMsg{err}
		}
		habits, err := m.source.Habits(m.ctx, m.userID)
		if err != nil {
			return errMsg{err}
		}
		totals, err := m.source.Totals(m.ctx, m.userID, false)
		if err != nil {
			return errMsg{err}
		}
		return dataLoadedMsg{grid: grid, habits: habits, totals: totals}
	}
}

func (m Model) loadDay(date string) tea.Cmd {
	return func() tea.Msg {
		activities, err := m.source.ListActivities(m.ctx, m.userID, date)
		if err != nil {
			return errMsg{err}
		}
		return dayLoadedMsg{date: date, activities: activities}
	}
}

// Selected returns the grid day under the cursor.
func (m Model) Selected() (aggregate.GridDay, bool) {
	if m.cursor < 0 || m.cursor >= len(m.grid) {
		return aggregate.GridDay{}, false
	}
	return m.grid[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	if len(m.grid) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.grid) {
		m.cursor = len(m.grid) - 1
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateGrid {
		keys = append(keys, m.keys.Enter, m.keys.Today)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Enter, m.keys.Today}
	return [][]key.Binding{global, navigation}
}
