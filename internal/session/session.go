// Package session holds the current bearer credential and user identity for
// the console. Token issuance and storage are the embedding application's
// concern; this package only answers "is there a usable session right now"
// and announces transitions between present and absent.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/fleetgrid/tms-console/internal/core/domain"
)

// Session is the default ports.SessionProvider implementation. The bearer is
// treated as opaque except for one courtesy: when it parses as a JWT with an
// exp claim, an expired token is reported as absent so no request is wasted
// on a credential the server will reject anyway.
type Session struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	user      *domain.User
	announced bool // the active/inactive state last delivered to subscribers
	nextID    int
	subs      map[int]func(active bool)
	log       zerolog.Logger
	now       func() time.Time
}

func New(log zerolog.Logger) *Session {
	return &Session{
		subs: make(map[int]func(bool)),
		log:  log,
		now:  time.Now,
	}
}

// SetToken installs a new bearer and the user it authenticates.
func (s *Session) SetToken(token string, user domain.User) {
	s.mu.Lock()
	s.token = token
	s.expiresAt = tokenExpiry(token)
	s.user = &user
	subs, active, changed := s.transitionLocked()
	s.mu.Unlock()

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("session established")
	if changed {
		notify(subs, active)
	}
}

// Clear ends the session.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.user = nil
	subs, active, changed := s.transitionLocked()
	s.mu.Unlock()

	s.log.Info().Msg("session cleared")
	if changed {
		notify(subs, active)
	}
}

// Token returns the current bearer. The second result is false when no
// usable token is held. A token found expired on read is dropped and the
// present-to-absent transition is announced, exactly as if Clear had been
// called.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return "", false
	}
	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		s.token = ""
		s.expiresAt = time.Time{}
		s.user = nil
		subs, active, changed := s.transitionLocked()
		s.mu.Unlock()

		s.log.Warn().Msg("bearer token expired, session ended")
		if changed {
			notify(subs, active)
		}
		return "", false
	}
	token := s.token
	s.mu.Unlock()
	return token, true
}

// User returns the authenticated user, if any.
func (s *Session) User() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() {
		return domain.User{}, false
	}
	return *s.user, true
}

// IsAdmin reports whether the current session belongs to an admin.
func (s *Session) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked() && s.user.IsAdmin()
}

// Subscribe registers fn to be called on present/absent transitions.
func (s *Session) Subscribe(fn func(active bool)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) activeLocked() bool {
	if s.token == "" {
		return false
	}
	return s.expiresAt.IsZero() || s.now().Before(s.expiresAt)
}

// transitionLocked compares the current active state against the last one
// announced and prepares a delivery when they differ.
func (s *Session) transitionLocked() (subs []func(bool), active, changed bool) {
	active = s.activeLocked()
	if active == s.announced {
		return nil, active, false
	}
	s.announced = active
	subs = make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs, active, true
}

func notify(subs []func(bool), active bool) {
	for _, fn := range subs {
		fn(active)
	}
}

// tokenExpiry extracts the exp claim without verifying the signature.
// Verification is the server's job; the zero time means "no known expiry",
// which is also the answer for opaque non-JWT bearers.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
