package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	derrors "github.com/julianstephens/daylog/internal/errors"
	"github.com/julianstephens/daylog/internal/models"
)

const activityColumns = `
	a.id, a.user_id, a.date, a.habit_id, h.name, h.emoji, COALESCE(c.name, ''), a.description, a.hours
	FROM activities a
	JOIN habits h ON h.id = a.habit_id AND h.user_id = a.user_id
	LEFT JOIN classifications c ON c.id = h.classification_id`

func scanActivity(row rowScanner) (models.Activity, error) {
	var a models.Activity
	err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.HabitID, &a.HabitName, &a.HabitEmoji, &a.Classification, &a.Description, &a.Hours)
	return a, err
}

func (s *Store) queryActivities(ctx context.Context, where string, args ...interface{}) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT"+activityColumns+" WHERE "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// AddActivity inserts an activity. The referenced habit must belong to the same
// user, otherwise errors.ErrNotFound is returned and nothing is written.
func (s *Store) AddActivity(ctx context.Context, activity models.Activity) (models.Activity, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (user_id, date, habit_id, description, hours)
		SELECT ?, ?, h.id, ?, ? FROM habits h WHERE h.id = ? AND h.user_id = ?`,
		activity.UserID, activity.Date, activity.Description, activity.Hours, activity.HabitID, activity.UserID)
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to add activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Activity{}, err
	}
	if n == 0 {
		return models.Activity{}, derrors.ErrNotFound
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Activity{}, err
	}
	return s.GetActivity(ctx, activity.UserID, id)
}

func (s *Store) GetActivity(ctx context.Context, userID string, id int64) (models.Activity, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+activityColumns+" WHERE a.id = ? AND a.user_id = ?", id, userID)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, derrors.ErrNotFound
	}
	return a, err
}

// GetActivitiesForDay returns the user's activities for date, newest first.
func (s *Store) GetActivitiesForDay(ctx context.Context, userID, date string) ([]models.Activity, error) {
	return s.queryActivities(ctx, "a.user_id = ? AND a.date = ? ORDER BY a.id DESC", userID, date)
}

// GetActivitiesInRange returns activities with startDate <= date <= endDate in date order.
func (s *Store) GetActivitiesInRange(ctx context.Context, userID, startDate, endDate string) ([]models.Activity, error) {
	return s.queryActivities(ctx, "a.user_id = ? AND a.date >= ? AND a.date <= ? ORDER BY a.date, a.id", userID, startDate, endDate)
}

func (s *Store) GetAllActivities(ctx context.Context, userID string) ([]models.Activity, error) {
	return s.queryActivities(ctx, "a.user_id = ? ORDER BY a.date, a.id", userID)
}

// UpdateActivity rewrites date, habit, description and hours of an existing
// activity. Both the activity and the new habit must belong to activity.UserID.
func (s *Store) UpdateActivity(ctx context.Context, activity models.Activity) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE activities
		SET date = ?, habit_id = ?, description = ?, hours = ?
		WHERE id = ? AND user_id = ?
		AND EXISTS (SELECT 1 FROM habits WHERE id = ? AND user_id = ?)`,
		activity.Date, activity.HabitID, activity.Description, activity.Hours,
		activity.ID, activity.UserID, activity.HabitID, activity.UserID)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return derrors.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteActivity(ctx context.Context, userID string, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return derrors.ErrNotFound
	}
	return nil
}
