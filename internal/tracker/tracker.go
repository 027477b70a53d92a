// Package tracker implements the per-user activity and habit operations on top
// of a storage.Provider, the classification oracle and the aggregation engine.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/daylog/internal/aggregate"
	"github.com/julianstephens/daylog/internal/constants"
	derrors "github.com/julianstephens/daylog/internal/errors"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/oracle"
	"github.com/julianstephens/daylog/internal/storage"
	"github.com/julianstephens/daylog/internal/utils"
	"github.com/julianstephens/daylog/internal/validation"
)

// seedEmoji avoids one oracle round trip per default category on first login.
var seedEmoji = map[string]string{
	"fitness":   "🏋️",
	"reading":   "📚",
	"housework": "🧹",
	"drive":     "🚗",
	"cooking":   "🍳",
}

type Options struct {
	AdminEmail string
	Location   *time.Location
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type Service struct {
	store      storage.Provider
	classifier *oracle.Classifier
	adminEmail string
	loc        *time.Location
	now        func() time.Time
}

func New(store storage.Provider, classifier *oracle.Classifier, opts Options) *Service {
	if classifier == nil {
		classifier = oracle.NewClassifier(nil)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:      store,
		classifier: classifier,
		adminEmail: strings.TrimSpace(opts.AdminEmail),
		loc:        loc,
		now:        now,
	}
}

// NewActivity is raw caller input for CreateActivity.
type NewActivity struct {
	Date        string
	Habit       string
	Hours       string
	Description string
}

// ActivityUpdate carries the fields to change; nil leaves a field as it is.
type ActivityUpdate struct {
	Date        *string
	Habit       *string
	Hours       *string
	Description *string
	Reclassify  bool
}

// Today is the current calendar day in the configured timezone.
func (s *Service) Today() time.Time {
	return utils.TruncateDay(s.now().In(s.loc))
}

func (s *Service) today() string {
	return utils.FormatDate(s.Today())
}

// EnsureUser records a login and seeds the default habits for a new user.
func (s *Service) EnsureUser(ctx context.Context, user models.User) (models.User, error) {
	if strings.TrimSpace(user.ID) == "" {
		return models.User{}, derrors.NewValidation("user", "id is required")
	}
	if err := s.store.UpsertUser(ctx, user); err != nil {
		return models.User{}, err
	}

	habits, err := s.store.GetHabits(ctx, user.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load habits: %w", err)
	}
	if len(habits) == 0 {
		for _, name := range constants.DefaultCategories {
			emoji, ok := seedEmoji[name]
			if !ok {
				emoji = constants.DefaultEmoji
			}
			if _, err := s.store.AddHabit(ctx, models.Habit{UserID: user.ID, Name: name, Emoji: emoji}); err != nil {
				return models.User{}, fmt.Errorf("failed to seed habit %q: %w", name, err)
			}
		}
		logger.Info("Seeded default habits", "user", user.ID)
	}

	return s.store.GetUser(ctx, user.ID)
}

func (s *Service) ListActivities(ctx context.Context, userID, date string) ([]models.Activity, error) {
	day, err := validation.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.store.GetActivitiesForDay(ctx, userID, day)
}

func (s *Service) GroupedActivities(ctx context.Context, userID, date string) ([]aggregate.Group, error) {
	activities, err := s.ListActivities(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return aggregate.GroupByCategory(activities), nil
}

func (s *Service) GetActivity(ctx context.Context, activityID int64, userID string) (models.Activity, error) {
	return s.store.GetActivity(ctx, userID, activityID)
}

// CreateActivity validates input, resolves the habit and stores the activity.
// Hours and date are checked before anything is written.
func (s *Service) CreateActivity(ctx context.Context, userID string, in NewActivity) (models.Activity, error) {
	hours, err := validation.ParseHours(in.Hours)
	if err != nil {
		return models.Activity{}, err
	}
	date := s.today()
	if strings.TrimSpace(in.Date) != "" {
		if date, err = validation.ParseDate(in.Date); err != nil {
			return models.Activity{}, err
		}
	}
	description := strings.TrimSpace(in.Description)

	habit, err := s.resolveHabit(ctx, userID, in.Habit, description)
	if err != nil {
		return models.Activity{}, err
	}

	activity, err := s.store.AddActivity(ctx, models.Activity{
		UserID:      userID,
		Date:        date,
		HabitID:     habit.ID,
		Description: description,
		Hours:       hours,
	})
	if err != nil {
		return models.Activity{}, err
	}
	logger.Debug("Activity created", "user", userID, "id", activity.ID, "habit", habit.Name)
	return activity, nil
}

// UpdateActivity applies a partial update to an activity owned by userID.
func (s *Service) UpdateActivity(ctx context.Context, activityID int64, userID string, upd ActivityUpdate) (models.Activity, error) {
	var hours *float64
	if upd.Hours != nil {
		h, err := validation.ParseHours(*upd.Hours)
		if err != nil {
			return models.Activity{}, err
		}
		hours = &h
	}
	var date string
	if upd.Date != nil {
		d, err := validation.ParseDate(*upd.Date)
		if err != nil {
			return models.Activity{}, err
		}
		date = d
	}

	current, err := s.store.GetActivity(ctx, userID, activityID)
	if err != nil {
		return models.Activity{}, err
	}

	if hours != nil {
		current.Hours = *hours
	}
	if date != "" {
		current.Date = date
	}
	if upd.Description != nil {
		current.Description = strings.TrimSpace(*upd.Description)
	}

	switch {
	case upd.Habit != nil && strings.TrimSpace(*upd.Habit) != "":
		habit, err := s.resolveHabit(ctx, userID, *upd.Habit, current.Description)
		if err != nil {
			return models.Activity{}, err
		}
		current.HabitID = habit.ID
	case upd.Reclassify:
		habit, err := s.resolveHabit(ctx, userID, "", current.Description)
		if err != nil {
			return models.Activity{}, err
		}
		current.HabitID = habit.ID
	}

	if err := s.store.UpdateActivity(ctx, current); err != nil {
		return models.Activity{}, err
	}
	return s.store.GetActivity(ctx, userID, activityID)
}

func (s *Service) DeleteActivity(ctx context.Context, activityID int64, userID string) error {
	return s.store.DeleteActivity(ctx, userID, activityID)
}

// resolveHabit turns a habit reference into a habit owned by userID. ref may be
// a numeric id, a name (created when unknown) or empty, in which case the
// description is classified against the user's habits.
func (s *Service) resolveHabit(ctx context.Context, userID, ref, description string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)

	if ref != "" {
		if id, err := validation.ParseID("habit", ref); err == nil {
			habit, err := s.store.GetHabit(ctx, userID, id)
			if errors.Is(err, derrors.ErrNotFound) {
				return models.Habit{}, derrors.NewValidation("habit", "habit %d does not exist", id)
			}
			return habit, err
		}
		return s.findOrCreateHabit(ctx, userID, ref, "")
	}

	habits, err := s.store.GetHabits(ctx, userID)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to load habits: %w", err)
	}
	label := constants.FallbackLabel
	if description != "" {
		label = s.classifier.Classify(ctx, description, models.HabitNames(habits))
	}
	for _, h := range habits {
		if h.Name == label {
			return h, nil
		}
	}
	return s.findOrCreateHabit(ctx, userID, label, "")
}

// SuggestHabit asks the oracle which of the user's habits fits description.
// ok is false when the fallback label was used instead.
func (s *Service) SuggestHabit(ctx context.Context, userID, description string) (label string, ok bool, err error) {
	habits, err := s.store.GetHabits(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("failed to load habits: %w", err)
	}
	if strings.TrimSpace(description) == "" {
		return constants.FallbackLabel, false, nil
	}
	if label, ok := s.classifier.Match(ctx, description, models.HabitNames(habits)); ok {
		return label, true, nil
	}
	return constants.FallbackLabel, false, nil
}

// Habits lists the user's habits in creation order.
func (s *Service) Habits(ctx context.Context, userID string) ([]models.Habit, error) {
	return s.store.GetHabits(ctx, userID)
}

// AddHabit creates a habit, asking the oracle for its emoji first. An existing
// habit with the same name (ignoring case) is returned instead.
func (s *Service) AddHabit(ctx context.Context, userID, name, classification string) (models.Habit, error) {
	return s.findOrCreateHabit(ctx, userID, name, classification)
}

func (s *Service) findOrCreateHabit(ctx context.Context, userID, name, classification string) (models.Habit, error) {
	name, err := validation.HabitName("habit", name)
	if err != nil {
		return models.Habit{}, err
	}

	existing, err := s.store.GetHabitByName(ctx, userID, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, derrors.ErrNotFound) {
		return models.Habit{}, err
	}

	habit := models.Habit{UserID: userID, Name: name}
	if classification = strings.TrimSpace(classification); classification != "" {
		c, err := s.store.AddClassification(ctx, userID, classification)
		if err != nil {
			return models.Habit{}, err
		}
		habit.ClassificationID = &c.ID
	}
	habit.Emoji = s.classifier.Emoji(ctx, name)

	created, err := s.store.AddHabit(ctx, habit)
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("Habit created", "user", userID, "habit", created.Name, "emoji", created.Emoji)
	return created, nil
}

func (s *Service) Classifications(ctx context.Context, userID string) ([]models.Classification, error) {
	return s.store.GetClassifications(ctx, userID)
}

// Grid returns the rolling 365-day grid ending today.
func (s *Service) Grid(ctx context.Context, userID string) ([]aggregate.GridDay, error) {
	today := s.Today()
	start, end := aggregate.GridRange(today)
	activities, err := s.store.GetActivitiesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return aggregate.BuildGrid(today, activities), nil
}

// Totals sums hours over the user's whole history, per habit or per classification.
func (s *Service) Totals(ctx context.Context, userID string, byClassification bool) ([]aggregate.Total, error) {
	activities, err := s.store.GetAllActivities(ctx, userID)
	if err != nil {
		return nil, err
	}
	if byClassification {
		return aggregate.TotalsByClassification(activities), nil
	}
	return aggregate.TotalsByCategory(activities), nil
}

// IsAdmin reports whether email belongs to the configured admin. No admin is
// configured when the admin email is empty.
func (s *Service) IsAdmin(email string) bool {
	return s.adminEmail != "" && strings.TrimSpace(email) == s.adminEmail
}

// AdminQuery runs query verbatim for the admin. Database errors are reported
// inside the result, not as an error.
func (s *Service) AdminQuery(ctx context.Context, callerEmail, query string) (models.QueryResult, error) {
	if !s.IsAdmin(callerEmail) {
		return models.QueryResult{}, derrors.ErrForbidden
	}
	if strings.TrimSpace(query) == "" {
		return models.QueryResult{}, derrors.NewValidation("query", "query is required")
	}

	logger.Warn("Admin query executed", "email", callerEmail, "query", query)
	result, err := s.store.RawQuery(ctx, query)
	if err != nil {
		return models.QueryResult{Query: query, Columns: []string{}, Rows: [][]string{}, Error: err.Error()}, nil
	}
	return result, nil
}

// Ping checks store connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
