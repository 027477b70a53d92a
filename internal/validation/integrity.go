package validation

import "fmt"

// ConflictType represents the type of integrity conflict
type ConflictType string

const (
	ConflictCrossUserHabit ConflictType = "cross_user_habit"
	ConflictNegativeHours  ConflictType = "negative_hours"
	ConflictInvalidDate    ConflictType = "invalid_date"
)

// Conflict represents a detected conflict in stored activities
type Conflict struct {
	Type        ConflictType
	Description string
	ActivityID  int64
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// ActivityRow is the minimal projection of a stored activity needed for integrity checks.
type ActivityRow struct {
	ID          int64
	UserID      string
	HabitUserID string
	Date        string
	Hours       float64
}

// CheckActivities reports activities that break the stored-data invariants.
func CheckActivities(rows []ActivityRow) *ValidationResult {
	result := &ValidationResult{}
	for _, r := range rows {
		if r.UserID != r.HabitUserID {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictCrossUserHabit,
				Description: fmt.Sprintf("activity %d (user %s) references a habit owned by user %s", r.ID, r.UserID, r.HabitUserID),
				ActivityID:  r.ID,
			})
		}
		if r.Hours < 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictNegativeHours,
				Description: fmt.Sprintf("activity %d has negative hours (%.2f)", r.ID, r.Hours),
				ActivityID:  r.ID,
			})
		}
		if _, err := ParseDate(r.Date); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("activity %d has invalid date %q", r.ID, r.Date),
				ActivityID:  r.ID,
			})
		}
	}
	return result
}
