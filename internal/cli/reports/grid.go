package reports

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daylog/internal/aggregate"
	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/validation"
)

var levelStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
}

var mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

var weekdayLabels = []string{"Sun", "", "Tue", "", "Thu", "", "Sat"}

type GridCmd struct {
	Weeks int  `short:"w" help:"Number of most recent weeks to draw." default:"53"`
	JSON  bool `help:"Print the grid as JSON instead of a heat map."`
}

func (c *GridCmd) Validate() error {
	if c.Weeks < 1 {
		return fmt.Errorf("weeks must be at least 1")
	}
	return nil
}

func (c *GridCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.EnsureUser(); err != nil {
		return err
	}
	grid, err := ctx.Tracker.Grid(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(grid, "", "  ")
		if err != nil {
			return err
		}
		ctx.Println(string(data))
		return nil
	}

	ctx.Println(HeatMap(grid, c.Weeks))
	stats := aggregate.GridStats(grid)
	ctx.Println(mutedStyle.Render(fmt.Sprintf("%d active days · %s total · current streak %d · longest streak %d",
		stats.ActiveDays, validation.FormatHours(stats.TotalHours), stats.CurrentStreak, stats.LongestStreak)))
	return nil
}

// HeatMap draws the grid as weekday rows by week columns, showing at most weeks columns.
func HeatMap(grid []aggregate.GridDay, weeks int) string {
	if len(grid) == 0 {
		return ""
	}
	offset := 0
	if first, err := time.Parse(constants.DateFormat, grid[0].Date); err == nil {
		offset = int(first.Weekday())
	}
	totalCols := (offset + len(grid) + 6) / 7
	startCol := 0
	if weeks > 0 && totalCols > weeks {
		startCol = totalCols - weeks
	}

	var b strings.Builder
	for row := 0; row < 7; row++ {
		b.WriteString(fmt.Sprintf("%-4s", weekdayLabels[row]))
		for col := startCol; col < totalCols; col++ {
			i := col*7 + row - offset
			if i < 0 || i >= len(grid) {
				b.WriteString("  ")
				continue
			}
			b.WriteString(levelStyles[aggregate.Level(grid[i].Hours)].Render("■") + " ")
		}
		b.WriteString("\n")
	}

	b.WriteString("    Less ")
	for _, s := range levelStyles {
		b.WriteString(s.Render("■") + " ")
	}
	b.WriteString("More")
	return b.String()
}
