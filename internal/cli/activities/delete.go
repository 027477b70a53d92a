package activities

import (
	"fmt"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/validation"
)

type DeleteCmd struct {
	ID  string `arg:"" help:"Activity ID to delete."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	id, err := validation.ParseID("id", c.ID)
	if err != nil {
		return err
	}
	if _, err := ctx.EnsureUser(); err != nil {
		return err
	}

	activity, err := ctx.Tracker.GetActivity(ctx.Ctx(), id, ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to find activity with ID %d: %w", id, err)
	}

	if !c.Yes {
		if !ctx.Interactive() {
			return fmt.Errorf("refusing to delete without confirmation, pass --yes")
		}
		confirmed := false
		if err := ctx.Prompt.Confirm(fmt.Sprintf("Delete %s?", describe(activity)), &confirmed); err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Tracker.DeleteActivity(ctx.Ctx(), id, ctx.UserID); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	ctx.Printf("Deleted activity: %s (ID: %d)\n", describe(activity), id)
	return nil
}
