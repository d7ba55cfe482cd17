package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/core/ports"
	"github.com/teamc/account-console/internal/pkg/metrics"
)

// SessionListener is notified with the new identity (nil on logout) after
// every store change. Listeners must not mutate the store.
type SessionListener func(identity *domain.Identity)

type subscription struct {
	id int
	fn SessionListener
}

// SessionStore holds the current identity, persists it through a
// SessionPersister and broadcasts changes to subscribers.
type SessionStore struct {
	persister ports.SessionPersister
	log       zerolog.Logger
	now       func() time.Time

	// writeMu serialises Load/Save/Clear so notifications arrive in order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current *domain.Identity
	subs    []subscription
	nextSub int
}

func NewSessionStore(persister ports.SessionPersister, log zerolog.Logger) *SessionStore {
	return &SessionStore{persister: persister, log: log, now: time.Now}
}

// Load reads the persisted identity and makes it current. Any failure to read
// or decode the blob degrades to "no identity".
func (s *SessionStore) Load(ctx context.Context) *domain.Identity {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	identity := s.restore(ctx)
	s.swap(identity)
	metrics.SessionChangesTotal.WithLabelValues("load").Inc()
	return identity.Clone()
}

func (s *SessionStore) restore(ctx context.Context) *domain.Identity {
	blob, err := s.persister.Read(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session read failed, starting logged out")
		return nil
	}
	if len(blob) == 0 {
		return nil
	}

	var identity domain.Identity
	if err := json.Unmarshal(blob, &identity); err != nil {
		s.log.Warn().Err(err).Msg("stored session is malformed, starting logged out")
		return nil
	}
	if !identity.Authenticated() || identity.ID == "" || !identity.Role.Valid() {
		s.log.Warn().Msg("stored session is incomplete, starting logged out")
		return nil
	}
	if tokenExpired(identity.Token, s.now()) {
		s.log.Info().Str("user_id", identity.ID).Msg("stored session token expired, starting logged out")
		return nil
	}
	return &identity
}

// Save persists identity and makes it current. Subscribers have been notified
// when Save returns.
func (s *SessionStore) Save(ctx context.Context, identity *domain.Identity) error {
	if identity == nil {
		return s.Clear(ctx)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	blob, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.persister.Write(ctx, blob); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.swap(identity.Clone())
	metrics.SessionChangesTotal.WithLabelValues("save").Inc()
	return nil
}

// Clear removes the persisted identity. The in-memory identity is dropped even
// if removal fails, so the process never keeps acting for a logged-out user.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.persister.Remove(ctx)
	s.swap(nil)
	metrics.SessionChangesTotal.WithLabelValues("clear").Inc()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns a copy of the live identity, or nil when logged out.
func (s *SessionStore) Current() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Subscribe registers fn and returns a function that removes it.
func (s *SessionStore) Subscribe(fn SessionListener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// swap replaces the current identity and notifies subscribers outside the lock.
// Caller holds writeMu.
func (s *SessionStore) swap(identity *domain.Identity) {
	s.mu.Lock()
	s.current = identity
	subs := append([]subscription(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(identity.Clone())
	}
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens never expire client-side; the backend stays the authority.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
