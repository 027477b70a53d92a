package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daylog/internal/constants"
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
	var date time.Time
	if err := row.Scan(&a.ID, &a.UserID, &date, &a.HabitID, &a.HabitName, &a.HabitEmoji, &a.Classification, &a.Description, &a.Hours); err != nil {
		return models.Activity{}, err
	}
	a.Date = date.Format(constants.DateFormat)
	return a, nil
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

func (s *Store) AddActivity(ctx context.Context, activity models.Activity) (models.Activity, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO activities (user_id, date, habit_id, description, hours)
SELECT $1::text, $2::date, h.id, $3::text, $4::double precision FROM habits h WHERE h.id = $5 AND h.user_id = $1
RETURNING id`,
		activity.UserID, activity.Date, activity.Description, activity.Hours, activity.HabitID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, derrors.ErrNotFound
	}
	if err != nil {
		return models.Activity{}, fmt.Errorf("failed to add activity: %w", err)
	}
	return s.GetActivity(ctx, activity.UserID, id)
}

func (s *Store) GetActivity(ctx context.Context, userID string, id int64) (models.Activity, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+activityColumns+" WHERE a.id = $1 AND a.user_id = $2", id, userID)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, derrors.ErrNotFound
	}
	return a, err
}

func (s *Store) GetActivitiesForDay(ctx context.Context, userID, date string) ([]models.Activity, error) {
	return s.queryActivities(ctx, "a.user_id = $1 AND a.date = $2 ORDER BY a.id DESC", userID, date)
}

func (s *Store) GetActivitiesInRange(ctx context.Context, userID, startDate, endDate string) ([]models.Activity, error) {
	return s.queryActivities(ctx, "a.user_id = $1 AND a.date BETWEEN $2 AND $3 ORDER BY a.date, a.id", userID, startDate, endDate)
}

func (s *Store) GetAllActivities(ctx context.Context, userID string) ([]models.Activity, error) {
	return s.queryActivities(ctx, "a.user_id = $1 ORDER BY a.date, a.id", userID)
}

func (s *Store) UpdateActivity(ctx context.Context, activity models.Activity) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE activities
SET date = $1, habit_id = $2, description = $3, hours = $4
WHERE id = $5 AND user_id = $6
AND EXISTS (SELECT 1 FROM habits WHERE id = $2 AND user_id = $6)`,
		activity.Date, activity.HabitID, activity.Description, activity.Hours, activity.ID, activity.UserID)
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
	res, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE id = $1 AND user_id = $2", id, userID)
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
