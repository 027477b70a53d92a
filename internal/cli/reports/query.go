package reports

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/daylog/internal/cli"
	derrors "github.com/julianstephens/daylog/internal/errors"
)

type QueryCmd struct {
	Query string `arg:"" help:"SQL statement to run against the database."`
}

func (c *QueryCmd) Run(ctx *cli.Context) error {
	result, err := ctx.Tracker.AdminQuery(ctx.Ctx(), ctx.Email, c.Query)
	if errors.Is(err, derrors.ErrForbidden) {
		return fmt.Errorf("admin query requires --email to match the configured admin email")
	}
	if err != nil {
		return err
	}
	if result.Error != "" {
		return fmt.Errorf("query failed: %s", result.Error)
	}
	if len(result.Columns) == 0 {
		ctx.Println("Query executed, no rows returned.")
		return nil
	}

	ctx.Println(table.New().
		Border(lipgloss.NormalBorder()).
		Headers(result.Columns...).
		Rows(result.Rows...).
		String())
	ctx.Printf("(%d rows)\n", len(result.Rows))
	return nil
}
