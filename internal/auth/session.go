package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cfadesk.org/internal/obs"
)

// CredentialExchanger trades a username and password for a bearer token.
type CredentialExchanger interface {
	Exchange(ctx context.Context, username, password string) (string, error)
}

// Session owns the persisted token and the current State.
type Session struct {
	store    TokenStore
	exchange CredentialExchanger
	now      func() time.Time

	mu    sync.Mutex
	state State
}

// SessionOption configures Session.
type SessionOption func(*Session)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession builds a logged-out session; call Init to restore a persisted token.
func NewSession(store TokenStore, exchange CredentialExchanger, opts ...SessionOption) *Session {
	s := &Session{
		store:    store,
		exchange: exchange,
		now:      time.Now,
		state:    LoggedOut(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init restores the session from the persisted token. An undecodable or
// expired token is removed and the session stays logged out.
func (s *Session) Init() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoreLocked()
}

func (s *Session) restoreLocked() State {
	token, err := s.store.Load()
	if err != nil {
		obs.Error("session token load failed", err, nil)
		s.state = Reduce(s.state, SignedOut{})
		return s.state
	}
	if strings.TrimSpace(token) == "" {
		s.state = Reduce(s.state, SignedOut{})
		return s.state
	}
	id, expiry, err := Decode(token)
	if err != nil {
		obs.Error("persisted token invalid", err, nil)
		s.evictLocked()
		return s.state
	}
	s.state = Reduce(s.state, Authenticated{Identity: id, Expiry: expiry, At: s.now()})
	if !s.state.Authenticated() {
		s.evictLocked()
	}
	return s.state
}

func (s *Session) evictLocked() {
	if err := s.store.Clear(); err != nil {
		obs.Error("session token clear failed", err, nil)
	}
	s.state = Reduce(s.state, SignedOut{})
}

// Login exchanges credentials for a token, persists it and decodes the identity.
// Failures leave the previous state untouched and are returned as-is.
func (s *Session) Login(ctx context.Context, username, password string) (State, error) {
	if s.exchange == nil {
		return s.Current(), errors.New("auth: no credential exchanger configured")
	}
	token, err := s.exchange.Exchange(ctx, username, password)
	if err != nil {
		return s.Current(), err
	}
	id, expiry, err := Decode(token)
	if err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := Reduce(s.state, Authenticated{Identity: id, Expiry: expiry, At: s.now()})
	if !next.Authenticated() {
		return s.state, ErrTokenExpired
	}
	if err := s.store.Save(token); err != nil {
		return s.state, fmt.Errorf("persist token: %w", err)
	}
	s.state = next
	return s.state, nil
}

// Logout clears the persisted token and the identity. No network call.
func (s *Session) Logout() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	return s.state
}

// Current returns the state, applying expiry at the current time.
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, Tick{At: s.now()})
	return s.state
}

// Require is the route guard. It re-reads the persisted token, so a token
// evicted by the HTTP client after a 401 logs the session out here.
func (s *Session) Require() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.restoreLocked()
	id, ok := state.Identity()
	if !ok {
		return Identity{}, ErrNotAuthenticated
	}
	return id, nil
}
