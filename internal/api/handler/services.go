package handler

import (
	"context"

	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/core/service"
)

// SessionAPI is what the auth and view handlers need from the session.
type SessionAPI interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Identity, domain.View, error)
	Register(ctx context.Context, form domain.Signup) (*domain.Identity, domain.View, error)
	Logout(ctx context.Context) error
	CurrentUser() *domain.Identity
}

// RosterAPI is the roster surface used by the dashboards.
type RosterAPI interface {
	Fetch(ctx context.Context, scope domain.Scope) []domain.RemoteEntity
	Snapshot(c domain.Category) service.RosterSnapshot
	Create(ctx context.Context, draft domain.WorkerDraft) error
	DiscardDraft()
	Delete(ctx context.Context, id string) error
}

// ProfileAPI is the self-service surface.
type ProfileAPI interface {
	Editor(field string) (*service.FieldEditor, error)
	DeleteSelf(ctx context.Context) error
	Ping(ctx context.Context)
}
