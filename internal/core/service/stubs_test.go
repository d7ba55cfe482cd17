package service

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/teamc/account-console/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type memPersister struct {
	mu        sync.Mutex
	blob      []byte
	readErr   error
	writeErr  error
	removeErr error
	writes    int
}

func (p *memPersister) Read(_ context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return nil, p.readErr
	}
	if p.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), p.blob...), nil
}

func (p *memPersister) Write(_ context.Context, blob []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return p.writeErr
	}
	p.blob = append([]byte(nil), blob...)
	p.writes++
	return nil
}

func (p *memPersister) Remove(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removeErr != nil {
		return p.removeErr
	}
	p.blob = nil
	return nil
}

type updateCall struct {
	token string
	id    string
	patch domain.UserPatch
}

type stubBackend struct {
	mu sync.Mutex

	loginIdentity *domain.Identity
	loginErr      error
	signupErr     error
	listFn        func(ctx context.Context, token string, scope domain.Scope) ([]domain.RemoteEntity, error)
	updateErr     error
	deleteErr     error
	addErr        error
	pingErr       error

	logins  []domain.Credentials
	signups []domain.Signup
	lists   []domain.Scope
	updates []updateCall
	deletes []string
	added   []domain.WorkerDraft
	pings   int
}

func (b *stubBackend) Login(_ context.Context, creds domain.Credentials) (*domain.Identity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logins = append(b.logins, creds)
	if b.loginErr != nil {
		return nil, b.loginErr
	}
	return b.loginIdentity.Clone(), nil
}

func (b *stubBackend) Signup(_ context.Context, form domain.Signup) (*domain.Identity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signups = append(b.signups, form)
	if b.signupErr != nil {
		return nil, b.signupErr
	}
	return &domain.Identity{ID: "new-id", Name: form.Name, Role: form.Role, Email: form.Email, Token: "tok-new"}, nil
}

func (b *stubBackend) ListUsers(ctx context.Context, token string, scope domain.Scope) ([]domain.RemoteEntity, error) {
	b.mu.Lock()
	b.lists = append(b.lists, scope)
	fn := b.listFn
	b.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, token, scope)
}

func (b *stubBackend) Ping(_ context.Context, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pings++
	return b.pingErr
}

func (b *stubBackend) UpdateUser(_ context.Context, token, id string, patch domain.UserPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, updateCall{token: token, id: id, patch: patch})
	return b.updateErr
}

func (b *stubBackend) DeleteUser(_ context.Context, _ string, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, id)
	return b.deleteErr
}

func (b *stubBackend) AddWorker(_ context.Context, _ string, draft domain.WorkerDraft) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.added = append(b.added, draft)
	return b.addErr
}

func (b *stubBackend) pingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pings
}

type fixedSession struct {
	identity *domain.Identity
}

func (s fixedSession) Current() *domain.Identity { return s.identity.Clone() }

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func managerIdentity() *domain.Identity {
	return &domain.Identity{ID: "m1", Name: "Mona", Role: domain.RoleManager, Email: "mona@example.com", Token: "tok-m1"}
}

func signedToken(exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "m1", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return s
}

func ptr[T any](v T) *T { return &v }
