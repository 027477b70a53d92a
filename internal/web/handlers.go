package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/daylog/internal/aggregate"
	derrors "github.com/julianstephens/daylog/internal/errors"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/tracker"
	"github.com/julianstephens/daylog/internal/utils"
	"github.com/julianstephens/daylog/internal/validation"
)

const (
	msgAdded      = "Activity added successfully!"
	msgUpdated    = "Activity updated successfully!"
	msgDeleted    = "Activity deleted successfully!"
	msgNoActivity = "Activity not found or you do not have permission to edit it."
)

// flexString accepts a JSON string, number or null. Browser forms send ids and
// hours either way.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f *flexString) ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return derrors.NewValidation("body", "request body too large")
		}
		return derrors.NewValidation("body", "invalid JSON")
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	return validation.ParseID("id", r.PathValue("id"))
}

type indexPage struct {
	User       Identity
	Today      string
	Flash      *flash
	Activities []models.Activity
	Groups     []aggregate.Group
	Habits     []models.Habit
	Grid       []aggregate.GridDay
	Stats      aggregate.Stats
	IsAdmin    bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := identity(r)
	today := utils.FormatDate(s.tracker.Today())

	activities, err := s.tracker.ListActivities(ctx, user.ID, today)
	if err != nil {
		s.pageError(w, err)
		return
	}
	habits, err := s.tracker.Habits(ctx, user.ID)
	if err != nil {
		s.pageError(w, err)
		return
	}
	grid, err := s.tracker.Grid(ctx, user.ID)
	if err != nil {
		s.pageError(w, err)
		return
	}

	s.pages.render(w, http.StatusOK, "index.html", indexPage{
		User:       user,
		Today:      today,
		Flash:      s.popFlash(w, r),
		Activities: activities,
		Groups:     aggregate.GroupByCategory(activities),
		Habits:     habits,
		Grid:       grid,
		Stats:      aggregate.GridStats(grid),
		IsAdmin:    s.tracker.IsAdmin(user.Email),
	})
}

// handleIndexPost is the no-JavaScript add form.
func (s *Server) handleIndexPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.addFlash(w, "error", "invalid form submission")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_, err := s.tracker.CreateActivity(r.Context(), identity(r).ID, tracker.NewActivity{
		Date:        r.PostForm.Get("date"),
		Habit:       r.PostForm.Get("category"),
		Hours:       r.PostForm.Get("hours"),
		Description: r.PostForm.Get("activity"),
	})
	if err != nil {
		s.addFlash(w, "error", publicMessage(err))
		if errorStatus(err) == http.StatusInternalServerError {
			logger.Error("Failed to add activity", "err", err)
		}
	} else {
		s.addFlash(w, "success", msgAdded)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type editPage struct {
	User     Identity
	Flash    *flash
	Activity models.Activity
	Habits   []models.Habit
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	user := identity(r)
	id, err := pathID(r)
	if err != nil {
		s.addFlash(w, "error", msgNoActivity)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	activity, err := s.tracker.GetActivity(r.Context(), id, user.ID)
	if errors.Is(err, derrors.ErrNotFound) {
		s.addFlash(w, "error", msgNoActivity)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.pageError(w, err)
		return
	}
	habits, err := s.tracker.Habits(r.Context(), user.ID)
	if err != nil {
		s.pageError(w, err)
		return
	}
	s.pages.render(w, http.StatusOK, "edit.html", editPage{
		User:     user,
		Flash:    s.popFlash(w, r),
		Activity: activity,
		Habits:   habits,
	})
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.addFlash(w, "error", msgNoActivity)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.addFlash(w, "error", "invalid form submission")
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}

	form := r.PostForm
	upd := tracker.ActivityUpdate{
		Date:        stringPtr(form.Get("date")),
		Hours:       stringPtr(form.Get("hours")),
		Description: stringPtr(form.Get("activity")),
	}
	if category := strings.TrimSpace(form.Get("category")); category != "" {
		upd.Habit = &category
	} else {
		upd.Reclassify = true
	}

	_, err = s.tracker.UpdateActivity(r.Context(), id, identity(r).ID, upd)
	switch {
	case err == nil:
		s.addFlash(w, "success", msgUpdated)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, derrors.ErrNotFound):
		s.addFlash(w, "error", msgNoActivity)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case derrors.IsValidation(err):
		s.addFlash(w, "error", err.Error())
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
	default:
		s.pageError(w, err)
	}
}

func stringPtr(s string) *string {
	return &s
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := s.tracker.ListActivities(r.Context(), identity(r).ID, r.PathValue("date"))
	if err != nil {
		writeReadError(w, err)
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

func (s *Server) handleGroupedActivities(w http.ResponseWriter, r *http.Request) {
	groups, err := s.tracker.GroupedActivities(r.Context(), identity(r).ID, r.PathValue("date"))
	if err != nil {
		writeReadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

type addActivityRequest struct {
	HabitID     flexString `json:"habit_id"`
	Habit       flexString `json:"habit"`
	Description string     `json:"description"`
	Hours       flexString `json:"hours"`
	Date        string     `json:"date"`
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	var req addActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeResult(w, err)
		return
	}
	ref := string(req.HabitID)
	if strings.TrimSpace(ref) == "" {
		ref = string(req.Habit)
	}

	activity, err := s.tracker.CreateActivity(r.Context(), identity(r).ID, tracker.NewActivity{
		Date:        req.Date,
		Habit:       ref,
		Hours:       string(req.Hours),
		Description: req.Description,
	})
	if err != nil {
		writeResult(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Success: true, Message: msgAdded, Activity: activity})
}

type updateActivityRequest struct {
	HabitID     *flexString `json:"habit_id"`
	Description *string     `json:"description"`
	Hours       *flexString `json:"hours"`
	Date        *string     `json:"date"`
	Reclassify  bool        `json:"reclassify"`
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeResult(w, err)
		return
	}
	var req updateActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeResult(w, err)
		return
	}

	activity, err := s.tracker.UpdateActivity(r.Context(), id, identity(r).ID, tracker.ActivityUpdate{
		Date:        req.Date,
		Habit:       req.HabitID.ptr(),
		Hours:       req.Hours.ptr(),
		Description: req.Description,
		Reclassify:  req.Reclassify,
	})
	if err != nil {
		writeResult(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Success: true, Message: msgUpdated, Activity: activity})
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeResult(w, err)
		return
	}
	if err := s.tracker.DeleteActivity(r.Context(), id, identity(r).ID); err != nil {
		writeResult(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result{Success: true, Message: msgDeleted})
}

func (s *Server) handleGridData(w http.ResponseWriter, r *http.Request) {
	grid, err := s.tracker.Grid(r.Context(), identity(r).ID)
	if err != nil {
		writeReadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

func (s *Server) handleHabitData(w http.ResponseWriter, r *http.Request) {
	byClassification := r.URL.Query().Get("by") == "classification"
	totals, err := s.tracker.Totals(r.Context(), identity(r).ID, byClassification)
	if err != nil {
		writeReadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := s.tracker.Habits(r.Context(), identity(r).ID)
	if err != nil {
		writeReadError(w, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	writeJSON(w, http.StatusOK, habits)
}

func (s *Server) handleAddHabit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		Classification string `json:"classification"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeReadError(w, err)
		return
	}
	habit, err := s.tracker.AddHabit(r.Context(), identity(r).ID, req.Name, req.Classification)
	if err != nil {
		writeReadError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

type adminPage struct {
	User   Identity
	Query  string
	Result *models.QueryResult
}

func (s *Server) handleAdminQuery(w http.ResponseWriter, r *http.Request) {
	user := identity(r)
	if !s.tracker.IsAdmin(user.Email) {
		s.forbidden(w, user)
		return
	}
	s.pages.render(w, http.StatusOK, "admin_query.html", adminPage{User: user})
}

// handleAdminQueryPost answers JSON requests with JSON and form posts with the page.
func (s *Server) handleAdminQueryPost(w http.ResponseWriter, r *http.Request) {
	user := identity(r)
	wantsJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")

	var query string
	if wantsJSON {
		var req struct {
			Query string `json:"query"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeReadError(w, err)
			return
		}
		query = req.Query
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		query = r.PostForm.Get("query")
	}

	res, err := s.tracker.AdminQuery(r.Context(), user.Email, query)
	switch {
	case errors.Is(err, derrors.ErrForbidden):
		if wantsJSON {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		s.forbidden(w, user)
		return
	case err != nil && wantsJSON:
		writeReadError(w, err)
		return
	case err != nil:
		s.pages.render(w, errorStatus(err), "admin_query.html", adminPage{
			User:   user,
			Query:  query,
			Result: &models.QueryResult{Query: query, Error: err.Error()},
		})
		return
	}

	if wantsJSON {
		writeJSON(w, http.StatusOK, res)
		return
	}
	s.pages.render(w, http.StatusOK, "admin_query.html", adminPage{User: user, Query: query, Result: &res})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.tracker.Ping(ctx); err != nil {
		logger.Warn("Health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) forbidden(w http.ResponseWriter, user Identity) {
	logger.Warn("Admin page denied", "email", user.Email)
	s.pages.render(w, http.StatusForbidden, "403.html", struct{ User Identity }{user})
}

func (s *Server) pageError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("Page request failed", "err", err)
	}
	http.Error(w, publicMessage(err), status)
}
