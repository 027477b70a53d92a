package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/errors"
)

// ParseHours parses a duration in hours. Negative, NaN and infinite values are rejected.
func ParseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.NewValidation("hours", "value is required")
	}
	hours, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewValidation("hours", "%q is not a number", s)
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, errors.NewValidation("hours", "%q is not a finite number", s)
	}
	if hours < 0 {
		return 0, errors.NewValidation("hours", "must not be negative, got %s", s)
	}
	return hours, nil
}

// ParseDate validates a YYYY-MM-DD calendar date and returns it in canonical form.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return "", errors.NewValidation("date", "%q is not a YYYY-MM-DD date", s)
	}
	return t.Format(constants.DateFormat), nil
}

// ParseID parses a positive surrogate id.
func ParseID(field, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidation(field, "%q is not a valid id", s)
	}
	return id, nil
}

// HabitName trims a habit or classification name and rejects empty values.
func HabitName(field, s string) (string, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", errors.NewValidation(field, "name is required")
	}
	if len(name) > 100 {
		return "", errors.NewValidation(field, "name must be at most 100 characters")
	}
	return name, nil
}

// FormatHours renders hours with one decimal place, as used in grid summaries.
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.1fh", hours)
}
