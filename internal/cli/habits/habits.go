package habits

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/daylog/internal/aggregate"
	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/validation"
)

type HabitCmd struct {
	Add  HabitAddCmd  `cmd:"" help:"Add a new habit."`
	List HabitListCmd `cmd:"" help:"List habits with their total hours."`
}

type HabitAddCmd struct {
	Name           string `arg:"" help:"Habit name."`
	Classification string `help:"Optional classification the habit belongs to."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.EnsureUser(); err != nil {
		return err
	}

	habit, err := ctx.Tracker.AddHabit(ctx.Ctx(), ctx.UserID, c.Name, c.Classification)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Habit: %s %s (ID: %d)\n", habit.Emoji, habit.Name, habit.ID)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.EnsureUser(); err != nil {
		return err
	}

	habits, err := ctx.Tracker.Habits(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}
	totals, err := ctx.Tracker.Totals(ctx.Ctx(), ctx.UserID, false)
	if err != nil {
		return fmt.Errorf("failed to compute totals: %w", err)
	}
	byName := make(map[string]aggregate.Total, len(totals))
	for _, t := range totals {
		byName[t.Category] = t
	}

	rows := make([][]string, 0, len(habits))
	for _, h := range habits {
		t := byName[h.Name]
		rows = append(rows, []string{
			strconv.FormatInt(h.ID, 10),
			h.Emoji,
			h.Name,
			h.Classification,
			validation.FormatHours(t.Hours),
			strconv.Itoa(t.Count),
		})
	}
	ctx.Println(table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "", "HABIT", "CLASSIFICATION", "HOURS", "ENTRIES").
		Rows(rows...).
		String())
	return nil
}
