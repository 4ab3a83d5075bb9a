package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned when the supplied admin password does not match.
var ErrInvalidPassword = errors.New("invalid admin password")

// Service verifies the shared admin password and manages admin sessions.
// The configured password is only kept as a bcrypt hash.
type Service struct {
	hash     []byte
	sessions *SessionStore
}

// NewService hashes password with the given bcrypt cost.
func NewService(password string, bcryptCost int, sessions *SessionStore) (*Service, error) {
	if password == "" {
		return nil, errors.New("admin password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}

	return &Service{hash: hash, sessions: sessions}, nil
}

// Verify reports whether password matches the admin password.
func (s *Service) Verify(password string) bool {
	if password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.hash, []byte(password)) == nil
}

// Authorize checks a mutating request. An explicit password always decides;
// without one, an admin session is accepted.
func (s *Service) Authorize(password string, hasSession bool) error {
	if password != "" {
		if s.Verify(password) {
			return nil
		}
		return ErrInvalidPassword
	}
	if hasSession {
		return nil
	}
	return ErrInvalidPassword
}

// Sessions returns the admin session store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}
