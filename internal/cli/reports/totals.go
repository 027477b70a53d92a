package reports

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/validation"
)

type TotalsCmd struct {
	ByClassification bool `help:"Sum per classification instead of per habit."`
}

func (c *TotalsCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.EnsureUser(); err != nil {
		return err
	}
	totals, err := ctx.Tracker.Totals(ctx.Ctx(), ctx.UserID, c.ByClassification)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		ctx.Println("No activities logged yet.")
		return nil
	}

	label := "HABIT"
	if c.ByClassification {
		label = "CLASSIFICATION"
	}
	var sum float64
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		sum += t.Hours
		rows = append(rows, []string{t.Emoji + " " + t.Category, validation.FormatHours(t.Hours), strconv.Itoa(t.Count)})
	}
	ctx.Println(table.New().
		Border(lipgloss.NormalBorder()).
		Headers(label, "HOURS", "ENTRIES").
		Rows(rows...).
		String())
	ctx.Printf("Total: %s\n", validation.FormatHours(sum))
	return nil
}
