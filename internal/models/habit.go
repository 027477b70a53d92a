package models

import "time"

// Classification groups habits above the habit level.
type Classification struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Habit is the bucket activities are logged against.
type Habit struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Emoji            string    `json:"emoji"`
	ClassificationID *int64    `json:"classification_id,omitempty"`
	Classification   string    `json:"classification,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// HabitNames returns the names of the given habits in order.
func HabitNames(habits []Habit) []string {
	names := make([]string, 0, len(habits))
	for _, h := range habits {
		names = append(names, h.Name)
	}
	return names
}
