package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	derrors "github.com/julianstephens/daylog/internal/errors"
	"github.com/julianstephens/daylog/internal/models"
)

const habitColumns = `
	h.id, h.user_id, h.name, h.emoji, h.classification_id, COALESCE(c.name, ''), h.created_at
	FROM habits h
	LEFT JOIN classifications c ON c.id = h.classification_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var classificationID sql.NullInt64
	var createdAt string

	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Emoji, &classificationID, &h.Classification, &createdAt); err != nil {
		return models.Habit{}, err
	}
	if classificationID.Valid {
		id := classificationID.Int64
		h.ClassificationID = &id
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	h.CreatedAt = t
	return h, nil
}

// AddHabit inserts a habit. A habit with the same name for the same user is
// returned unchanged instead of being duplicated.
func (s *Store) AddHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	createdAt := habit.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var classificationID interface{}
	if habit.ClassificationID != nil {
		classificationID = *habit.ClassificationID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (user_id, name, emoji, classification_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, name) DO NOTHING`,
		habit.UserID, habit.Name, habit.Emoji, classificationID, createdAt.Format(time.RFC3339))
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}

	row := s.db.QueryRowContext(ctx, "SELECT"+habitColumns+" WHERE h.user_id = ? AND h.name = ?", habit.UserID, habit.Name)
	return scanHabit(row)
}

func (s *Store) GetHabit(ctx context.Context, userID string, id int64) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+habitColumns+" WHERE h.id = ? AND h.user_id = ?", id, userID)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, derrors.ErrNotFound
	}
	return h, err
}

// GetHabitByName looks a habit up by name, ignoring case.
func (s *Store) GetHabitByName(ctx context.Context, userID, name string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT"+habitColumns+" WHERE h.user_id = ? AND lower(h.name) = lower(?) ORDER BY h.id LIMIT 1",
		userID, name)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, derrors.ErrNotFound
	}
	return h, err
}

func (s *Store) GetHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT"+habitColumns+" WHERE h.user_id = ? ORDER BY h.id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) AddClassification(ctx context.Context, userID, name string) (models.Classification, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO classifications (user_id, name) VALUES (?, ?) ON CONFLICT(user_id, name) DO NOTHING",
		userID, name)
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to add classification: %w", err)
	}
	return s.GetClassificationByName(ctx, userID, name)
}

func (s *Store) GetClassifications(ctx context.Context, userID string) ([]models.Classification, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name FROM classifications WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Classification{}
	for rows.Next() {
		var c models.Classification
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetClassificationByName(ctx context.Context, userID, name string) (models.Classification, error) {
	var c models.Classification
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name FROM classifications WHERE user_id = ? AND lower(name) = lower(?) ORDER BY id LIMIT 1",
		userID, name).Scan(&c.ID, &c.UserID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Classification{}, derrors.ErrNotFound
	}
	return c, err
}
