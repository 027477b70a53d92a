package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/julianstephens/daylog/internal/aggregate"
	derrors "github.com/julianstephens/daylog/internal/errors"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"hours": validation.FormatHours,
		"level": aggregate.Level,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &pageRenderer{tmpl: tmpl}, nil
}

// render executes into a buffer first so a template error never yields a half-written page.
func (p *pageRenderer) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("Template render failed", "template", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode JSON response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// result is the response body of the mutating JSON endpoints.
type result struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	Activity interface{} `json:"activity,omitempty"`
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case derrors.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, derrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, derrors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal error text from clients.
func publicMessage(err error) string {
	switch errorStatus(err) {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusNotFound:
		return "activity not found"
	default:
		return err.Error()
	}
}

func writeResult(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "err", err)
	}
	writeJSON(w, status, result{Success: false, Message: publicMessage(err)})
}

func writeReadError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "err", err)
	}
	writeError(w, status, publicMessage(err))
}
