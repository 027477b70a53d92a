package web

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/daylog/internal/constants"
)

// Identity is the signed-in user as reported by the identity provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by the session middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.ID != ""
}

var errBadCookie = errors.New("invalid or expired cookie")

// signer produces tamper-evident cookie values of the form payload.signature,
// where payload is base64url JSON and signature is hex HMAC-SHA256.
type signer struct {
	secret []byte
	now    func() time.Time
}

type envelope struct {
	Expires int64           `json:"exp"`
	Data    json.RawMessage `json:"data"`
}

func (s signer) sign(v interface{}, ttl time.Duration) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(envelope{Expires: s.now().Add(ttl).Unix(), Data: data})
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + s.mac(payload), nil
}

func (s signer) verify(value string, v interface{}) error {
	payload, sig, ok := strings.Cut(value, ".")
	if !ok {
		return errBadCookie
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(payload))) {
		return errBadCookie
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return errBadCookie
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errBadCookie
	}
	if s.now().Unix() >= env.Expires {
		return errBadCookie
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return errBadCookie
	}
	return nil
}

func (s signer) mac(payload string) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(payload))
	return hex.EncodeToString(m.Sum(nil))
}

// flash is a one-shot message shown on the next page render.
type flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const flashTTL = 5 * time.Minute

func (s *Server) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setSession(w http.ResponseWriter, id Identity) error {
	value, err := s.signer.sign(id, constants.SessionTTL)
	if err != nil {
		return err
	}
	s.setCookie(w, constants.SessionCookieName, value, constants.SessionTTL)
	return nil
}

func (s *Server) readSession(r *http.Request) (Identity, bool) {
	c, err := r.Cookie(constants.SessionCookieName)
	if err != nil {
		return Identity{}, false
	}
	var id Identity
	if err := s.signer.verify(c.Value, &id); err != nil || id.ID == "" {
		return Identity{}, false
	}
	return id, true
}

func (s *Server) addFlash(w http.ResponseWriter, kind, message string) {
	value, err := s.signer.sign(flash{Kind: kind, Message: message}, flashTTL)
	if err != nil {
		return
	}
	s.setCookie(w, constants.FlashCookieName, value, flashTTL)
}

// popFlash reads and clears the pending flash message, if any.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(constants.FlashCookieName)
	if err != nil {
		return nil
	}
	s.clearCookie(w, constants.FlashCookieName)
	var f flash
	if err := s.signer.verify(c.Value, &f); err != nil {
		return nil
	}
	return &f
}
