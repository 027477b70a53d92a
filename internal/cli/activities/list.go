package activities

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
	"github.com/julianstephens/daylog/internal/validation"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)
var groupStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

type ListCmd struct {
	Date    string `short:"d" help:"Date in YYYY-MM-DD format (default: today)."`
	Grouped bool   `short:"g" help:"Group activities by habit."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.EnsureUser(); err != nil {
		return err
	}
	date := c.Date
	if date == "" {
		date = utils.FormatDate(ctx.Tracker.Today())
	}

	if c.Grouped {
		groups, err := ctx.Tracker.GroupedActivities(ctx.Ctx(), ctx.UserID, date)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			ctx.Printf("No activities on %s\n", date)
			return nil
		}
		for _, g := range groups {
			title := g.Category
			if g.Emoji != "" {
				title = g.Emoji + " " + title
			}
			ctx.Println(groupStyle.Render(fmt.Sprintf("%s (%s)", title, validation.FormatHours(g.Hours))))
			ctx.Println(Table(g.Activities))
		}
		return nil
	}

	activities, err := ctx.Tracker.ListActivities(ctx.Ctx(), ctx.UserID, date)
	if err != nil {
		return err
	}
	if len(activities) == 0 {
		ctx.Printf("No activities on %s\n", date)
		return nil
	}
	ctx.Printf("Activities on %s:\n", date)
	ctx.Println(Table(activities))
	return nil
}

// Table renders activities as a bordered table.
func Table(activities []models.Activity) string {
	rows := make([][]string, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10),
			a.Date,
			a.HabitEmoji + " " + a.HabitName,
			validation.FormatHours(a.Hours),
			a.Description,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DATE", "HABIT", "HOURS", "ACTIVITY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
