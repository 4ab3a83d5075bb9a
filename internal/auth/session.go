package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the name of the admin session cookie.
const SessionName = "teamfolio-admin"

const sessionKeyAdmin = "admin"

// SessionStore issues signed cookies marking a browser as logged in to the
// admin panel.
type SessionStore struct {
	store *sessions.CookieStore
}

// NewSessionStore creates a cookie store signed with a key derived from secret.
// The cookie lives for a week and is never readable from JavaScript.
func NewSessionStore(secret string, secure bool) *SessionStore {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}

	return &SessionStore{store: store}
}

// IsAdmin reports whether the request carries a valid admin session.
func (s *SessionStore) IsAdmin(r *http.Request) bool {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return false
	}
	admin, _ := session.Values[sessionKeyAdmin].(bool)
	return admin
}

// Login marks the session as authenticated.
func (s *SessionStore) Login(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	session.Values[sessionKeyAdmin] = true
	return session.Save(r, w)
}

// Logout expires the admin session cookie.
func (s *SessionStore) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	delete(session.Values, sessionKeyAdmin)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
