package activities

import (
	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/tracker"
	"github.com/julianstephens/daylog/internal/validation"
)

type EditCmd struct {
	ID          string  `arg:"" help:"Activity ID to edit."`
	Hours       *string `short:"H" help:"New hours."`
	Habit       *string `short:"c" help:"New habit name or ID."`
	Date        *string `short:"d" help:"New date in YYYY-MM-DD format."`
	Description *string `help:"New description."`
	Reclassify  bool    `help:"Classify the activity again from its description."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	id, err := validation.ParseID("id", c.ID)
	if err != nil {
		return err
	}
	if _, err := ctx.EnsureUser(); err != nil {
		return err
	}

	activity, err := ctx.Tracker.UpdateActivity(ctx.Ctx(), id, ctx.UserID, tracker.ActivityUpdate{
		Date:        c.Date,
		Habit:       c.Habit,
		Hours:       c.Hours,
		Description: c.Description,
		Reclassify:  c.Reclassify,
	})
	if err != nil {
		return err
	}

	ctx.Printf("✓ Updated %s (ID: %d)\n", describe(activity), activity.ID)
	return nil
}
