package ports

import (
	"context"

	"github.com/teamc/account-console/internal/core/domain"
)

// AccountBackend is the consumed contract of the external account REST API.
// Every method except Login and Signup requires the session's bearer token.
type AccountBackend interface {
	// Login posts credentials and returns the user merged with its token.
	Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)
	// Signup creates an account and returns the user merged with its token.
	Signup(ctx context.Context, form domain.Signup) (*domain.Identity, error)

	ListUsers(ctx context.Context, token string, scope domain.Scope) ([]domain.RemoteEntity, error)
	// Ping refreshes the caller's activity timestamp (GET /users/me).
	Ping(ctx context.Context, token string) error
	UpdateUser(ctx context.Context, token, id string, patch domain.UserPatch) error
	DeleteUser(ctx context.Context, token, id string) error
	AddWorker(ctx context.Context, token string, draft domain.WorkerDraft) error
}
