package storage

import (
	"context"
	"database/sql"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/validation"
)

// Provider is the persistence boundary. Every activity and habit operation is
// scoped to a user id; rows owned by another user behave as if absent and
// surface as errors.ErrNotFound.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Ping(ctx context.Context) error

	// Users
	UpsertUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)

	// Classifications
	AddClassification(ctx context.Context, userID, name string) (models.Classification, error)
	GetClassifications(ctx context.Context, userID string) ([]models.Classification, error)
	GetClassificationByName(ctx context.Context, userID, name string) (models.Classification, error)

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	GetHabit(ctx context.Context, userID string, id int64) (models.Habit, error)
	GetHabitByName(ctx context.Context, userID, name string) (models.Habit, error)
	GetHabits(ctx context.Context, userID string) ([]models.Habit, error)

	// Activities
	AddActivity(ctx context.Context, activity models.Activity) (models.Activity, error)
	GetActivity(ctx context.Context, userID string, id int64) (models.Activity, error)
	GetActivitiesForDay(ctx context.Context, userID, date string) ([]models.Activity, error)
	GetActivitiesInRange(ctx context.Context, userID, startDate, endDate string) ([]models.Activity, error)
	GetAllActivities(ctx context.Context, userID string) ([]models.Activity, error)
	UpdateActivity(ctx context.Context, activity models.Activity) error
	DeleteActivity(ctx context.Context, userID string, id int64) error

	// Admin
	RawQuery(ctx context.Context, query string) (models.QueryResult, error)
	GetIntegrityRows(ctx context.Context) ([]validation.ActivityRow, error)

	// Utils
	GetConfigPath() string
	GetDB() *sql.DB
	Dialect() string
}
