// Package session holds the bearer token of the signed-in user.
//
// A Session is the single owner of the token: the API client reads it on
// every request, and only the dashboard controller sets or clears it. When a
// Persister is attached the token survives process restarts.
package session

import (
	"strings"
	"sync"
	"time"
)

// Token is the persisted form of a signed-in session.
type Token struct {
	Value    string    `json:"token"`
	Username string    `json:"username,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// Persister loads and stores the token across processes.
type Persister interface {
	Load() (Token, error)
	Save(Token) error
	Clear() error
}

// Session is the in-memory token holder. The zero value is a logged-out,
// unpersisted session.
type Session struct {
	mu    sync.RWMutex
	token Token
	store Persister
	now   func() time.Time
}

// New creates a logged-out session that persists through store. A nil
// store keeps the token in memory only.
func New(store Persister) *Session {
	return &Session{store: store, now: time.Now}
}

// Open creates a session initialized from the persisted token, if any.
func Open(store Persister) (*Session, error) {
	s := New(store)
	if store == nil {
		return s, nil
	}
	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	s.token = token
	return s, nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Value
}

// Username returns the name the token was issued for, if known.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Username
}

// Current returns a copy of the held token.
func (s *Session) Current() Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Present reports whether a token is held.
func (s *Session) Present() bool {
	return s.Token() != ""
}

// Set stores a new token. An empty token is equivalent to Clear.
func (s *Session) Set(value, username string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.Clear()
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	token := Token{Value: value, Username: username, SavedAt: now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Save(token); err != nil {
			return err
		}
	}
	s.token = token
	return nil
}

// Clear drops the token. The in-memory token is cleared even when the
// persisted copy cannot be removed.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = Token{}
	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}
