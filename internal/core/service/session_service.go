package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/core/ports"
)

// SessionService is the façade the rest of the console uses to establish,
// read, patch and end the session.
type SessionService struct {
	store   *SessionStore
	backend ports.AccountBackend
	log     zerolog.Logger
}

func NewSessionService(store *SessionStore, backend ports.AccountBackend, log zerolog.Logger) *SessionService {
	return &SessionService{store: store, backend: backend, log: log}
}

// Login replaces the current identity with the authoritative backend response
// and persists it. It has no network effect.
func (s *SessionService) Login(ctx context.Context, identity *domain.Identity) error {
	if !identity.Authenticated() {
		return fmt.Errorf("login: %w: identity has no access token", domain.ErrValidation)
	}
	if err := s.store.Save(ctx, identity); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("session started")
	return nil
}

// Logout clears the identity and broadcasts the change.
func (s *SessionService) Logout(ctx context.Context) error {
	prev := s.store.Current()
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if prev != nil {
		s.log.Info().Str("user_id", prev.ID).Msg("session ended")
	}
	return nil
}

// PatchSelf merges backend-confirmed fields into the current identity and
// re-persists it. Callers invoke it only after the backend accepted the write.
func (s *SessionService) PatchSelf(ctx context.Context, patch domain.UserPatch) error {
	current := s.store.Current()
	if current == nil {
		return fmt.Errorf("patch self: %w", domain.ErrNoSession)
	}
	current.Apply(patch)
	if err := s.store.Save(ctx, current); err != nil {
		return fmt.Errorf("patch self: %w", err)
	}
	return nil
}

// CurrentUser returns a copy of the current identity, or nil.
func (s *SessionService) CurrentUser() *domain.Identity {
	return s.store.Current()
}

// Current satisfies SessionReader.
func (s *SessionService) Current() *domain.Identity {
	return s.store.Current()
}

// Subscribe forwards to the store's observer list.
func (s *SessionService) Subscribe(fn SessionListener) func() {
	return s.store.Subscribe(fn)
}

// Authenticate performs the remote login and, on success, starts the session.
// It returns the identity and the view the role lands on.
func (s *SessionService) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Identity, domain.View, error) {
	if err := validateForm(creds); err != nil {
		return nil, domain.ViewLogin, err
	}
	identity, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.log.Warn().Err(err).Str("email", creds.Email).Msg("login failed")
		return nil, domain.ViewLogin, fmt.Errorf("authenticate: %w", err)
	}
	if err := s.Login(ctx, identity); err != nil {
		return nil, domain.ViewLogin, err
	}
	return identity.Clone(), domain.HomeView(identity.Role), nil
}

// Register creates the account remotely and starts the session with the
// returned identity.
func (s *SessionService) Register(ctx context.Context, form domain.Signup) (*domain.Identity, domain.View, error) {
	if err := validateForm(form); err != nil {
		return nil, domain.ViewLogin, err
	}
	identity, err := s.backend.Signup(ctx, form)
	if err != nil {
		s.log.Warn().Err(err).Str("email", form.Email).Msg("signup failed")
		return nil, domain.ViewLogin, fmt.Errorf("register: %w", err)
	}
	if err := s.Login(ctx, identity); err != nil {
		return nil, domain.ViewLogin, err
	}
	return identity.Clone(), domain.HomeView(identity.Role), nil
}
