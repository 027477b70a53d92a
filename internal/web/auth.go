package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/models"
)

const (
	// GoogleUserInfoURL returns {id, email, name} for the token's owner.
	GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateTTL          = 10 * time.Minute
)

func (s *Server) oauthContext(ctx context.Context) context.Context {
	if s.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	return ctx
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	s.setCookie(w, constants.StateCookieName, state, stateTTL)
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w, constants.SessionCookieName)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleCallback completes the authorization-code flow and starts a session.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(constants.StateCookieName)
	if err != nil || state.Value == "" || state.Value != r.URL.Query().Get("state") {
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	s.clearCookie(w, constants.StateCookieName)

	if msg := r.URL.Query().Get("error"); msg != "" {
		http.Error(w, "login failed: "+msg, http.StatusUnauthorized)
		return
	}

	ctx := s.oauthContext(r.Context())
	token, err := s.oauth.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		logger.Warn("OAuth code exchange failed", "err", err)
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	id, err := s.fetchIdentity(ctx, token)
	if err != nil {
		logger.Warn("Failed to fetch user info", "err", err)
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	if _, err := s.tracker.EnsureUser(r.Context(), models.User{ID: id.ID, Username: id.Name, Email: id.Email}); err != nil {
		logger.Error("Failed to record user", "user", id.ID, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.setSession(w, id); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	logger.Info("User signed in", "user", id.ID, "email", id.Email)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) fetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error) {
	client := s.oauth.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return Identity{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Identity{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, string(body))
	}

	var id Identity
	if err := json.Unmarshal(body, &id); err != nil {
		return Identity{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if id.ID == "" {
		return Identity{}, fmt.Errorf("userinfo response has no id")
	}
	return id, nil
}

// requireLogin redirects anonymous page requests to /login.
func (s *Server) requireLogin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.readSession(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// requireAPILogin answers anonymous API requests with 401 JSON.
func (s *Server) requireAPILogin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.readSession(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func identity(r *http.Request) Identity {
	id, _ := IdentityFrom(r.Context())
	return id
}
