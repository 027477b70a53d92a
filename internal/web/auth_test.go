package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/julianstephens/daylog/internal/constants"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// fakeProvider serves the token and userinfo endpoints of an OAuth2 identity provider.
func fakeProvider(t *testing.T, user Identity) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func oauthOptions(provider *httptest.Server) Options {
	return Options{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   provider.URL + "/auth",
			TokenURL:  provider.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: provider.URL + "/userinfo",
		HTTPClient:  provider.Client(),
	}
}

func TestLoginRedirectsWithState(t *testing.T) {
	provider := fakeProvider(t, alice)
	env := setupServer(t, oauthOptions(provider))

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/login", nil), nil)
	require.Equal(t, http.StatusFound, rec.Code)

	state := cookieValue(rec, constants.StateCookieName)
	require.NotEmpty(t, state)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, provider.URL+"/auth", loc.Scheme+"://"+loc.Host+loc.Path)
	assert.Equal(t, state, loc.Query().Get("state"))
	assert.Equal(t, "client-id", loc.Query().Get("client_id"))
	assert.Equal(t, "http://daylog.test/callback", loc.Query().Get("redirect_uri"))
}

func TestCallbackStartsSession(t *testing.T) {
	newcomer := Identity{ID: "carol-sub", Email: "carol@example.com", Name: "Carol"}
	provider := fakeProvider(t, newcomer)
	env := setupServer(t, oauthOptions(provider))

	req := httptest.NewRequest(http.MethodGet, "/callback?code=good-code&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: constants.StateCookieName, Value: "s1"})
	rec := env.do(t, req, nil)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/", rec.Header().Get("Location"))

	session := cookieValue(rec, constants.SessionCookieName)
	require.NotEmpty(t, session)
	var got Identity
	require.NoError(t, env.server.signer.verify(session, &got))
	assert.Equal(t, newcomer, got)

	user, err := env.store.GetUser(context.Background(), newcomer.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email)

	habits, err := env.tracker.Habits(context.Background(), newcomer.ID)
	require.NoError(t, err)
	assert.Len(t, habits, len(constants.DefaultCategories))
}

func TestCallbackFailures(t *testing.T) {
	provider := fakeProvider(t, alice)
	env := setupServer(t, oauthOptions(provider))

	tests := []struct {
		name   string
		target string
		cookie string
		want   int
	}{
		{"missing state cookie", "/callback?code=good-code&state=s1", "", http.StatusBadRequest},
		{"state mismatch", "/callback?code=good-code&state=s2", "s1", http.StatusBadRequest},
		{"provider error", "/callback?error=access_denied&state=s1", "s1", http.StatusUnauthorized},
		{"bad code", "/callback?code=bad-code&state=s1", "s1", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: constants.StateCookieName, Value: tt.cookie})
			}
			rec := env.do(t, req, nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.Empty(t, cookieValue(rec, constants.SessionCookieName))
		})
	}
}

func TestLogoutClearsSession(t *testing.T) {
	env := setupServer(t, Options{})
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/logout", nil), &alice)
	assert.Equal(t, http.StatusFound, rec.Code)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == constants.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestSigner(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := signer{secret: []byte("k1"), now: func() time.Time { return now }}

	value, err := s.sign(alice, time.Hour)
	require.NoError(t, err)

	var got Identity
	require.NoError(t, s.verify(value, &got))
	assert.Equal(t, alice, got)

	other := signer{secret: []byte("k2"), now: s.now}
	assert.ErrorIs(t, other.verify(value, &got), errBadCookie)
	assert.ErrorIs(t, s.verify("garbage", &got), errBadCookie)

	later := signer{secret: []byte("k1"), now: func() time.Time { return now.Add(2 * time.Hour) }}
	assert.ErrorIs(t, later.verify(value, &got), errBadCookie)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	id, ok := IdentityFrom(WithIdentity(context.Background(), bob))
	assert.True(t, ok)
	assert.Equal(t, bob, id)
}
