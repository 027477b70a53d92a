// Package habitlist shows a user's habits with their all-time hours.
package habitlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daylog/internal/aggregate"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/validation"
)

type Item struct {
	Habit models.Habit
	Total aggregate.Total
}

func (i Item) Title() string {
	return fmt.Sprintf("%s %s", i.Habit.Emoji, i.Habit.Name)
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s | %d entries", validation.FormatHours(i.Total.Hours), i.Total.Count)
	if i.Habit.Classification != "" {
		desc += " | " + i.Habit.Classification
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Name }

type Model struct {
	list list.Model
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	return Model{list: l}
}

// Items pairs every habit with its total. Habits never logged get a zero total.
func Items(habits []models.Habit, totals []aggregate.Total) []Item {
	byName := make(map[string]aggregate.Total, len(totals))
	for _, t := range totals {
		byName[t.Category] = t
	}
	items := make([]Item, 0, len(habits))
	for _, h := range habits {
		total, ok := byName[h.Name]
		if !ok {
			total = aggregate.Total{Category: h.Name, Emoji: h.Emoji}
		}
		items = append(items, Item{Habit: h, Total: total})
	}
	return items
}

func (m *Model) SetHabits(habits []models.Habit, totals []aggregate.Total) {
	src := Items(habits, totals)
	items := make([]list.Item, len(src))
	for i, it := range src {
		items[i] = it
	}
	m.list.SetItems(items)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Log an activity to create one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
