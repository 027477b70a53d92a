package activities

import (
	"fmt"
	"strings"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/tracker"
	"github.com/julianstephens/daylog/internal/validation"
)

type AddCmd struct {
	Description string `arg:"" optional:"" help:"What you did."`
	Hours       string `short:"H" help:"Hours spent, e.g. 1.5."`
	Habit       string `short:"c" help:"Habit name or ID. Classified from the description when omitted."`
	Date        string `short:"d" help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.EnsureUser(); err != nil {
		return err
	}

	if err := c.prompt(ctx); err != nil {
		return err
	}

	activity, err := ctx.Tracker.CreateActivity(ctx.Ctx(), ctx.UserID, tracker.NewActivity{
		Date:        c.Date,
		Habit:       c.Habit,
		Hours:       c.Hours,
		Description: c.Description,
	})
	if err != nil {
		return err
	}

	ctx.Printf("✓ Added %s (ID: %d)\n", describe(activity), activity.ID)
	return nil
}

// prompt fills in hours, description and habit when running in a terminal.
func (c *AddCmd) prompt(ctx *cli.Context) error {
	if strings.TrimSpace(c.Hours) == "" {
		if !ctx.Interactive() {
			return fmt.Errorf("--hours is required")
		}
		if err := ctx.Prompt.Input("Hours spent", &c.Hours, func(s string) error {
			_, err := validation.ParseHours(s)
			return err
		}); err != nil {
			return err
		}
	}
	if !ctx.Interactive() {
		return nil
	}

	if strings.TrimSpace(c.Description) == "" {
		if err := ctx.Prompt.Input("What did you do?", &c.Description, nil); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.Habit) != "" || strings.TrimSpace(c.Description) == "" {
		return nil
	}

	label, ok, err := ctx.Tracker.SuggestHabit(ctx.Ctx(), ctx.UserID, c.Description)
	if err != nil {
		return err
	}
	if ok {
		c.Habit = label
		return nil
	}

	habits, err := ctx.Tracker.Habits(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}
	c.Habit = label
	return ctx.Prompt.Select("Could not classify this activity. Pick a habit", models.HabitNames(habits), &c.Habit)
}

// describe renders an activity on one line.
func describe(a models.Activity) string {
	habit := a.HabitName
	if a.HabitEmoji != "" {
		habit = a.HabitEmoji + " " + habit
	}
	line := fmt.Sprintf("%s  %s  %s", a.Date, habit, validation.FormatHours(a.Hours))
	if a.Description != "" {
		line += "  " + a.Description
	}
	return line
}
