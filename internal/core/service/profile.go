package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/core/ports"
)

const (
	FieldName        = "name"
	FieldDescription = "description"
)

// ProfileService covers what a user does to their own account: editing name
// and description, deleting the account and the activity ping.
type ProfileService struct {
	session *SessionService
	backend ports.AccountBackend
	pings   *rate.Limiter
	log     zerolog.Logger

	mu          sync.Mutex
	ownerID     string
	name        *FieldEditor
	description *FieldEditor
	unsubscribe func()
}

// NewProfileService binds the self editors to the session. pingLimit caps how
// often Ping reaches the backend.
func NewProfileService(session *SessionService, backend ports.AccountBackend, pingLimit rate.Limit, log zerolog.Logger) *ProfileService {
	p := &ProfileService{
		session: session,
		backend: backend,
		pings:   rate.NewLimiter(pingLimit, 1),
		log:     log,
	}
	p.rebuild(session.Current())
	p.unsubscribe = session.Subscribe(p.rebuild)
	return p
}

// rebuild recreates the editors when the session switches to another user.
// Patches to the same user keep the live editors so a submit in progress
// is not reset by its own confirmation.
func (p *ProfileService) rebuild(identity *domain.Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if identity == nil {
		p.ownerID = ""
		p.name = nil
		p.description = nil
		return
	}
	if identity.ID == p.ownerID && p.name != nil {
		return
	}

	p.ownerID = identity.ID
	p.name = NewFieldEditor(EditorConfig{
		Field:     FieldName,
		TargetID:  identity.ID,
		Confirmed: identity.Name,
		Created:   true,
		Commit:    p.committer(identity.ID, domain.NamePatch),
		OnConfirmed: func(ctx context.Context, value string) error {
			return p.session.PatchSelf(ctx, domain.NamePatch(value))
		},
	}, p.log)
	p.description = NewFieldEditor(EditorConfig{
		Field:     FieldDescription,
		TargetID:  identity.ID,
		Confirmed: identity.DescriptionText(),
		Created:   identity.HasDescription(),
		Commit:    p.committer(identity.ID, domain.DescriptionPatch),
		OnConfirmed: func(ctx context.Context, value string) error {
			return p.session.PatchSelf(ctx, domain.DescriptionPatch(value))
		},
	}, p.log)
}

func (p *ProfileService) committer(id string, patch func(string) domain.UserPatch) Committer {
	return func(ctx context.Context, value string) error {
		identity := p.session.Current()
		if identity == nil || identity.ID != id {
			return domain.ErrNoSession
		}
		return p.backend.UpdateUser(ctx, identity.Token, id, patch(value))
	}
}

// NameEditor returns the editor for the current user's name.
func (p *ProfileService) NameEditor() (*FieldEditor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.name == nil {
		return nil, fmt.Errorf("name editor: %w", domain.ErrNoSession)
	}
	return p.name, nil
}

// DescriptionEditor returns the editor for the current user's description.
func (p *ProfileService) DescriptionEditor() (*FieldEditor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.description == nil {
		return nil, fmt.Errorf("description editor: %w", domain.ErrNoSession)
	}
	return p.description, nil
}

// Editor looks up a self editor by field name.
func (p *ProfileService) Editor(field string) (*FieldEditor, error) {
	switch field {
	case FieldName:
		return p.NameEditor()
	case FieldDescription:
		return p.DescriptionEditor()
	}
	return nil, fmt.Errorf("unknown field %q: %w", field, domain.ErrValidation)
}

// DeleteSelf deletes the current account and ends the session. When the
// backend refuses, the session is kept.
func (p *ProfileService) DeleteSelf(ctx context.Context) error {
	identity := p.session.Current()
	if identity == nil {
		return fmt.Errorf("delete self: %w", domain.ErrNoSession)
	}
	if err := p.backend.DeleteUser(ctx, identity.Token, identity.ID); err != nil {
		p.log.Warn().Err(err).Str("user_id", identity.ID).Msg("delete self failed")
		return fmt.Errorf("delete self: %w", err)
	}
	p.log.Info().Str("user_id", identity.ID).Msg("account deleted")
	return p.session.Logout(ctx)
}

// Ping reports activity to the backend. Calls beyond the limiter's budget
// are dropped; failures are logged only.
func (p *ProfileService) Ping(ctx context.Context) {
	identity := p.session.Current()
	if identity == nil || !p.pings.Allow() {
		return
	}
	if err := p.backend.Ping(ctx, identity.Token); err != nil {
		p.log.Debug().Err(err).Str("user_id", identity.ID).Msg("activity ping failed")
	}
}

// Close detaches the service from the session.
func (p *ProfileService) Close() {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
