// Package session holds the client-side token pair. A Session is created
// explicitly at application start and injected into the API client - there
// is no ambient global token storage.
package session

import (
	"sync"

	"github.com/pkg/errors"
)

// Store persists the token pair across process restarts. Implementations
// must be safe for use from a single Session only.
type Store interface {
	Load() (access, refresh string, err error)
	Save(access, refresh string) error
	Clear() error
}

// Session is the holder of the access/refresh token pair. All mutations
// write through to the Store, so a crash never loses a rotation.
type Session struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	store        Store
}

// New creates a Session backed by store, loading any previously persisted
// token pair. A store that fails to load yields an empty (anonymous)
// session rather than an error: the caller simply has to log in again.
func New(store Store) *Session {
	s := &Session{store: store}
	if store != nil {
		if access, refresh, err := store.Load(); err == nil {
			s.accessToken = access
			s.refreshToken = refresh
		}
	}
	return s
}

// SetTokens overwrites the token pair and persists it. No expiry
// validation is performed at write time.
func (s *Session) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = access
	s.refreshToken = refresh
	if s.store != nil {
		if err := s.store.Save(access, refresh); err != nil {
			return errors.Wrap(err, "[Session.SetTokens] persist tokens")
		}
	}
	return nil
}

// Clear removes both tokens. Idempotent.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = ""
	s.refreshToken = ""
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			return errors.Wrap(err, "[Session.Clear] clear persisted tokens")
		}
	}
	return nil
}

// Read returns the current token pair. Never fails.
func (s *Session) Read() (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

// AccessToken returns the current access token, or "" when anonymous.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, or "".
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// IsAuthenticated reports whether an access token is held. This is the
// session invariant: authenticated exactly when the access token is set.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}
