// Package web serves the daylog dashboard and its JSON API behind Google sign-in.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// Options configures the OAuth client and session signing. Endpoint and
// UserInfoURL default to Google's.
type Options struct {
	BaseURL       string
	ClientID      string
	ClientSecret  string
	SessionSecret string
	Endpoint      oauth2.Endpoint
	UserInfoURL   string
	// HTTPClient is used for token exchange and userinfo calls when set.
	HTTPClient *http.Client
	Now        func() time.Time
}

type Server struct {
	tracker       *tracker.Service
	oauth         *oauth2.Config
	userInfoURL   string
	httpClient    *http.Client
	signer        signer
	secureCookies bool
	pages         *pageRenderer
}

// New builds a Server. A session secret is required.
func New(t *tracker.Service, opts Options) (*Server, error) {
	if t == nil {
		return nil, errors.New("tracker is required")
	}
	if opts.SessionSecret == "" {
		return nil, errors.New("session secret is required")
	}
	endpoint := opts.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfo := opts.UserInfoURL
	if userInfo == "" {
		userInfo = GoogleUserInfoURL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")

	pages, err := newPageRenderer()
	if err != nil {
		return nil, err
	}

	return &Server{
		tracker: t,
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  baseURL + "/callback",
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL:   userInfo,
		httpClient:    opts.HTTPClient,
		signer:        signer{secret: []byte(opts.SessionSecret), now: now},
		secureCookies: strings.HasPrefix(baseURL, "https://"),
		pages:         pages,
	}, nil
}

// Handler returns the full route table wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("GET /callback", s.handleCallback)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.Handle("GET /{$}", s.requireLogin(s.handleIndex))
	mux.Handle("POST /{$}", s.requireLogin(s.handleIndexPost))
	mux.Handle("GET /edit/{id}", s.requireLogin(s.handleEdit))
	mux.Handle("POST /edit/{id}", s.requireLogin(s.handleEditPost))
	mux.Handle("GET /admin/query", s.requireLogin(s.handleAdminQuery))
	mux.Handle("POST /admin/query", s.requireLogin(s.handleAdminQueryPost))

	mux.Handle("GET /activities/{date}", s.requireAPILogin(s.handleActivities))
	mux.Handle("GET /activities/{date}/grouped", s.requireAPILogin(s.handleGroupedActivities))
	mux.Handle("POST /add_activity", s.requireAPILogin(s.handleAddActivity))
	mux.Handle("POST /update_activity/{id}", s.requireAPILogin(s.handleUpdateActivity))
	mux.Handle("DELETE /delete_activity/{id}", s.requireAPILogin(s.handleDeleteActivity))
	mux.Handle("GET /activity_grid_data", s.requireAPILogin(s.handleGridData))
	mux.Handle("GET /habit_data", s.requireAPILogin(s.handleHabitData))
	mux.Handle("GET /habits", s.requireAPILogin(s.handleHabits))
	mux.Handle("POST /habits", s.requireAPILogin(s.handleAddHabit))

	return recoveryMiddleware(loggingMiddleware(bodySizeMiddleware(mux)))
}

// Serve runs the HTTP server on ln until ctx is cancelled, then shuts it down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
