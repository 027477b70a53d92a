package aggregate

import (
	"fmt"
	"time"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
	"github.com/julianstephens/daylog/internal/validation"
)

// GridDay is one cell of the rolling calendar.
type GridDay struct {
	Date    string   `json:"date"`
	Hours   float64  `json:"hours"`
	Summary []string `json:"summary"`
}

// Stats summarises a grid.
type Stats struct {
	ActiveDays    int     `json:"active_days"`
	TotalHours    float64 `json:"total_hours"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
}

// GridRange returns the first and last date (inclusive) of the grid ending at today.
func GridRange(today time.Time) (string, string) {
	return utils.FormatDate(utils.WindowStart(today, constants.GridDays)), utils.FormatDate(today)
}

// BuildGrid returns exactly constants.GridDays entries, oldest first, ending at
// today's calendar day. Days without activity have zero hours and an empty summary.
// Activities outside the window are ignored.
func BuildGrid(today time.Time, activities []models.Activity) []GridDay {
	type dayBucket struct {
		total      float64
		categories []string
		hours      map[string]float64
	}

	buckets := make(map[string]*dayBucket)
	for _, a := range activities {
		b, ok := buckets[a.Date]
		if !ok {
			b = &dayBucket{hours: make(map[string]float64)}
			buckets[a.Date] = b
		}
		if _, seen := b.hours[a.Category()]; !seen {
			b.categories = append(b.categories, a.Category())
		}
		b.hours[a.Category()] += a.Hours
		b.total += a.Hours
	}

	start := utils.WindowStart(today, constants.GridDays)
	grid := make([]GridDay, 0, constants.GridDays)
	for i := 0; i < constants.GridDays; i++ {
		date := utils.FormatDate(start.AddDate(0, 0, i))
		day := GridDay{Date: date, Summary: []string{}}
		if b, ok := buckets[date]; ok {
			day.Hours = b.total
			for _, c := range b.categories {
				day.Summary = append(day.Summary, fmt.Sprintf("%s: %s", c, validation.FormatHours(b.hours[c])))
			}
		}
		grid = append(grid, day)
	}
	return grid
}

// GridStats computes activity streaks over a grid. The current streak counts
// consecutive non-zero days ending at the last entry.
func GridStats(grid []GridDay) Stats {
	var s Stats
	run := 0
	for _, d := range grid {
		s.TotalHours += d.Hours
		if d.Hours > 0 {
			s.ActiveDays++
			run++
			if run > s.LongestStreak {
				s.LongestStreak = run
			}
		} else {
			run = 0
		}
	}
	s.CurrentStreak = run
	return s
}

// MaxLevel is the darkest heat-map shade.
const MaxLevel = 4

// Level buckets a day's hours into heat-map shades 0 through MaxLevel.
func Level(hours float64) int {
	switch {
	case hours <= 0:
		return 0
	case hours < 1:
		return 1
	case hours < 3:
		return 2
	case hours < 6:
		return 3
	default:
		return MaxLevel
	}
}
