package models

// Activity is one logged block of time. HabitName, HabitEmoji and Classification
// are populated from the referenced habit when read back.
type Activity struct {
	ID             int64   `json:"id"`
	UserID         string  `json:"user_id"`
	Date           string  `json:"date"` // YYYY-MM-DD format
	HabitID        int64   `json:"habit_id"`
	HabitName      string  `json:"category"`
	HabitEmoji     string  `json:"emoji,omitempty"`
	Classification string  `json:"classification,omitempty"`
	Description    string  `json:"activity"`
	Hours          float64 `json:"hours"`
}

// Category is the label an activity is aggregated under.
func (a Activity) Category() string {
	return a.HabitName
}
