package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/teamc/account-console/internal/core/domain"
)

func newProfile(t *testing.T, backend *stubBackend, identity *domain.Identity) (*ProfileService, *SessionService) {
	t.Helper()
	session, _ := newSessionService(backend)
	if identity != nil {
		if err := session.Login(context.Background(), identity); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
	}
	p := NewProfileService(session, backend, rate.Inf, zerolog.Nop())
	t.Cleanup(p.Close)
	return p, session
}

func workerIdentity() *domain.Identity {
	return &domain.Identity{ID: "w1", Name: "Wes", Role: domain.RoleWorker, Email: "wes@example.com", Token: "tok-w1"}
}

func TestProfile_NameEditSyncsSession(t *testing.T) {
	backend := &stubBackend{}
	p, session := newProfile(t, backend, workerIdentity())

	e, err := p.NameEditor()
	if err != nil {
		t.Fatalf("NameEditor returned error: %v", err)
	}
	_ = e.Begin()
	_ = e.SetDraft("Wesley")
	if err := e.Submit(context.Background()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if len(backend.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(backend.updates))
	}
	call := backend.updates[0]
	if call.id != "w1" || call.token != "tok-w1" || call.patch.Name == nil || *call.patch.Name != "Wesley" {
		t.Fatalf("unexpected update call: %+v", call)
	}
	if call.patch.Description != nil {
		t.Fatalf("name edit must not touch description")
	}
	if got := session.CurrentUser().Name; got != "Wesley" {
		t.Fatalf("session not patched, name=%q", got)
	}

	same, _ := p.NameEditor()
	if same != e {
		t.Fatalf("editor rebuilt after a self patch")
	}
}

func TestProfile_NameEditFailureLeavesSession(t *testing.T) {
	backend := &stubBackend{updateErr: &domain.RejectedError{Status: 500}}
	p, session := newProfile(t, backend, workerIdentity())

	e, _ := p.NameEditor()
	_ = e.Begin()
	_ = e.SetDraft("Wesley")
	if err := e.Submit(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if got := session.CurrentUser().Name; got != "Wes" {
		t.Fatalf("session changed after failed submit: %q", got)
	}
}

func TestProfile_NameEditSessionWriteFailureIsReported(t *testing.T) {
	backend := &stubBackend{}
	session, persister := newSessionService(backend)
	if err := session.Login(context.Background(), workerIdentity()); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	p := NewProfileService(session, backend, rate.Inf, zerolog.Nop())
	t.Cleanup(p.Close)

	persister.mu.Lock()
	persister.writeErr = errors.New("read-only filesystem")
	persister.mu.Unlock()

	e, _ := p.NameEditor()
	_ = e.Begin()
	_ = e.SetDraft("Wesley")
	if err := e.Submit(context.Background()); err != nil {
		t.Fatalf("accepted submit returned error: %v", err)
	}
	if len(backend.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(backend.updates))
	}
	if got := session.CurrentUser().Name; got != "Wes" {
		t.Fatalf("session changed despite failed write: %q", got)
	}
	if snap := e.Snapshot(); snap.Confirmed != "Wesley" || snap.LastError == "" {
		t.Fatalf("expected confirmed value with a reported session error, got %+v", snap)
	}
}

func TestProfile_DescriptionUncreatedThenCleared(t *testing.T) {
	backend := &stubBackend{}
	p, session := newProfile(t, backend, workerIdentity())

	e, err := p.DescriptionEditor()
	if err != nil {
		t.Fatalf("DescriptionEditor returned error: %v", err)
	}
	if e.Snapshot().Created {
		t.Fatalf("expected uncreated description")
	}

	_ = e.Begin()
	_ = e.SetDraft("night shift")
	if err := e.Submit(context.Background()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !session.CurrentUser().HasDescription() {
		t.Fatalf("expected description on session")
	}

	if err := e.Clear(context.Background()); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if session.CurrentUser().HasDescription() {
		t.Fatalf("expected description cleared on session")
	}
	if e.Snapshot().Created {
		t.Fatalf("expected uncreated variant after clear")
	}
}

func TestProfile_EditorsFollowSession(t *testing.T) {
	backend := &stubBackend{}
	p, session := newProfile(t, backend, workerIdentity())

	first, _ := p.NameEditor()
	_ = session.Logout(context.Background())
	if _, err := p.NameEditor(); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}

	_ = session.Login(context.Background(), managerIdentity())
	second, err := p.NameEditor()
	if err != nil {
		t.Fatalf("NameEditor returned error: %v", err)
	}
	if second == first || second.Snapshot().TargetID != "m1" {
		t.Fatalf("expected editor rebuilt for m1, got %+v", second.Snapshot())
	}
}

func TestProfile_UnknownField(t *testing.T) {
	p, _ := newProfile(t, &stubBackend{}, workerIdentity())
	if _, err := p.Editor("email"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProfile_DeleteSelfLogsOut(t *testing.T) {
	backend := &stubBackend{}
	p, session := newProfile(t, backend, workerIdentity())

	if err := p.DeleteSelf(context.Background()); err != nil {
		t.Fatalf("DeleteSelf returned error: %v", err)
	}
	if len(backend.deletes) != 1 || backend.deletes[0] != "w1" {
		t.Fatalf("expected delete of w1, got %v", backend.deletes)
	}
	if session.CurrentUser() != nil {
		t.Fatalf("expected logout after self delete")
	}
}

func TestProfile_DeleteSelfFailureKeepsSession(t *testing.T) {
	backend := &stubBackend{deleteErr: domain.ErrTransport}
	p, session := newProfile(t, backend, workerIdentity())

	if err := p.DeleteSelf(context.Background()); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if session.CurrentUser() == nil {
		t.Fatalf("session dropped after failed delete")
	}
}

func TestProfile_PingThrottledAndSilent(t *testing.T) {
	backend := &stubBackend{pingErr: domain.ErrTransport}
	session, _ := newSessionService(backend)
	_ = session.Login(context.Background(), workerIdentity())
	p := NewProfileService(session, backend, rate.Limit(0.001), zerolog.Nop())
	defer p.Close()

	p.Ping(context.Background())
	p.Ping(context.Background())
	p.Ping(context.Background())
	if got := backend.pingCount(); got != 1 {
		t.Fatalf("expected one ping within the burst, got %d", got)
	}
}

func TestProfile_PingWithoutSession(t *testing.T) {
	backend := &stubBackend{}
	p, _ := newProfile(t, backend, nil)
	p.Ping(context.Background())
	if backend.pingCount() != 0 {
		t.Fatalf("ping sent without a session")
	}
}
