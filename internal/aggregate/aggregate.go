// Package aggregate derives the per-request summaries shown on the dashboard:
// the grouped day view, running totals and the rolling year grid. Nothing here is
// stored; every function works on rows already fetched for one user.
package aggregate

import (
	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/models"
)

// Group is the set of activities sharing one category on a day.
type Group struct {
	Category   string            `json:"category"`
	Emoji      string            `json:"emoji,omitempty"`
	Hours      float64           `json:"hours"`
	Activities []models.Activity `json:"activities"`
}

// Total is the summed hours for one category.
type Total struct {
	Category string  `json:"category"`
	Emoji    string  `json:"emoji,omitempty"`
	Hours    float64 `json:"hours"`
	Count    int     `json:"count"`
}

// GroupByCategory partitions activities by category. Groups appear in the order
// their category is first seen; activities keep their input order inside a group.
func GroupByCategory(activities []models.Activity) []Group {
	index := make(map[string]int)
	groups := []Group{}
	for _, a := range activities {
		i, ok := index[a.Category()]
		if !ok {
			i = len(groups)
			index[a.Category()] = i
			groups = append(groups, Group{Category: a.Category(), Emoji: a.HabitEmoji})
		}
		groups[i].Hours += a.Hours
		groups[i].Activities = append(groups[i].Activities, a)
	}
	return groups
}

// TotalsByCategory sums hours per category (habit name) across all given activities.
func TotalsByCategory(activities []models.Activity) []Total {
	return totals(activities, func(a models.Activity) (string, string) {
		return a.Category(), a.HabitEmoji
	})
}

// TotalsByClassification sums hours per classification. Activities whose habit
// has no classification are counted under the fallback label.
func TotalsByClassification(activities []models.Activity) []Total {
	return totals(activities, func(a models.Activity) (string, string) {
		if a.Classification == "" {
			return constants.FallbackLabel, ""
		}
		return a.Classification, ""
	})
}

func totals(activities []models.Activity, key func(models.Activity) (string, string)) []Total {
	index := make(map[string]int)
	out := []Total{}
	for _, a := range activities {
		name, emoji := key(a)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Total{Category: name, Emoji: emoji})
		}
		out[i].Hours += a.Hours
		out[i].Count++
	}
	return out
}
