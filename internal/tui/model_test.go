package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daylog/internal/aggregate"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/tui/components/habitlist"
)

type fakeSource struct {
	activities []models.Activity
	gridErr    error
	dayCalls   []string
}

var today = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func (f *fakeSource) Grid(context.Context, string) ([]aggregate.GridDay, error) {
	if f.gridErr != nil {
		return nil, f.gridErr
	}
	return aggregate.BuildGrid(today, f.activities), nil
}

func (f *fakeSource) ListActivities(_ context.Context, _ string, date string) ([]models.Activity, error) {
	f.dayCalls = append(f.dayCalls, date)
	var out []models.Activity
	for _, a := range f.activities {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSource) Habits(context.Context, string) ([]models.Habit, error) {
	return []models.Habit{{ID: 1, Name: "reading", Emoji: "📚"}, {ID: 2, Name: "fitness", Emoji: "🏋️"}}, nil
}

func (f *fakeSource) Totals(context.Context, string, bool) ([]aggregate.Total, error) {
	return aggregate.TotalsByCategory(f.activities), nil
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs any resulting command synchronously.
func press(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, cmd := m.Update(keyPress(s))
	m = next.(Model)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			next, _ = m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func loadedModel(t *testing.T, src *fakeSource) Model {
	t.Helper()
	m := NewModel(context.Background(), src, "u1")
	next, _ := m.Update(m.Init()())
	return next.(Model)
}

func TestModelLoadsGrid(t *testing.T) {
	src := &fakeSource{activities: []models.Activity{
		{Date: "2024-03-01", HabitName: "reading", Hours: 1.5},
		{Date: "2024-02-29", HabitName: "fitness", Hours: 1},
	}}
	m := loadedModel(t, src)

	if len(m.grid) != 365 {
		t.Fatalf("grid length = %d, want 365", len(m.grid))
	}
	d, ok := m.Selected()
	if !ok || d.Date != "2024-03-01" {
		t.Fatalf("cursor day = %+v, want today", d)
	}
	if m.stats.CurrentStreak != 2 {
		t.Errorf("current streak = %d, want 2", m.stats.CurrentStreak)
	}
	view := m.View()
	if !strings.Contains(view, "2024-03-01") || !strings.Contains(view, "reading: 1.5h") {
		t.Errorf("view missing selected day summary:\n%s", view)
	}
}

func TestModelCursorMovement(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	last := len(m.grid) - 1

	tests := []struct {
		key  string
		want int
	}{
		{"k", last - 1},
		{"h", last - 8},
		{"l", last - 1},
		{"j", last},
		{"j", last},
	}
	for _, tt := range tests {
		m = press(t, m, tt.key)
		if m.cursor != tt.want {
			t.Fatalf("after %q cursor = %d, want %d", tt.key, m.cursor, tt.want)
		}
	}

	for i := 0; i < 60; i++ {
		m = press(t, m, "h")
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
	m = press(t, m, "t")
	if m.cursor != last {
		t.Errorf("cursor = %d after jump to today, want %d", m.cursor, last)
	}
}

func TestModelOpensDay(t *testing.T) {
	src := &fakeSource{activities: []models.Activity{
		{Date: "2024-02-29", HabitName: "fitness", HabitEmoji: "🏋️", Description: "squats", Hours: 0.5},
	}}
	m := loadedModel(t, src)
	m = press(t, m, "k")
	m = press(t, m, "enter")

	if m.state != StateDay {
		t.Fatalf("state = %v, want StateDay", m.state)
	}
	if len(src.dayCalls) != 1 || src.dayCalls[0] != "2024-02-29" {
		t.Errorf("day loads = %v", src.dayCalls)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	view := m.View()
	if !strings.Contains(view, "squats") {
		t.Errorf("day view missing activity:\n%s", view)
	}
}

func TestModelTabsCycle(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	for _, want := range []SessionState{StateDay, StateHabits, StateGrid} {
		m = press(t, m, "tab")
		if m.state != want {
			t.Fatalf("state = %v, want %v", m.state, want)
		}
	}
}

func TestModelShowsLoadError(t *testing.T) {
	m := loadedModel(t, &fakeSource{gridErr: errors.New("database is locked")})
	if !strings.Contains(m.View(), "database is locked") {
		t.Errorf("view does not show load error:\n%s", m.View())
	}
}

func TestHabitListItems(t *testing.T) {
	habits := []models.Habit{{Name: "reading", Emoji: "📚"}, {Name: "drive"}}
	totals := []aggregate.Total{{Category: "reading", Hours: 3, Count: 2}}

	items := habitlist.Items(habits, totals)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if got := items[0].Description(); got != "3.0h | 2 entries" {
		t.Errorf("reading description = %q", got)
	}
	if got := items[1].Description(); got != "0.0h | 0 entries" {
		t.Errorf("drive description = %q", got)
	}
}
