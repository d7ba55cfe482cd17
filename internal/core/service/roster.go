package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/core/ports"
	"github.com/teamc/account-console/internal/pkg/metrics"
)

// RosterSnapshot is a read-only view of the roster state.
type RosterSnapshot struct {
	Scope       domain.Scope          `json:"scope"`
	Entities    []domain.RemoteEntity `json:"entities"`
	Loading     bool                  `json:"loading"`
	Initialized bool                  `json:"initialized"`
	FetchedAt   time.Time             `json:"fetchedAt,omitempty"`
	LastError   string                `json:"lastError,omitempty"`
	Draft       *domain.WorkerDraft   `json:"draft,omitempty"`
}

// Roster caches the users visible to a privileged viewer. Membership is the
// result of the last applied fetch; overlapping fetches are resolved
// supersede-by-latest.
type Roster struct {
	backend ports.AccountBackend
	session SessionReader
	log     zerolog.Logger
	now     func() time.Time

	mu          sync.Mutex
	owner       string
	scope       domain.Scope
	entities    []domain.RemoteEntity
	loading     bool
	initialized bool
	fetchedAt   time.Time
	lastErr     error
	draft       *domain.WorkerDraft
	// gen is the generation of the most recently started fetch.
	gen uint64
	// removed maps ids deleted locally to the generation current at deletion,
	// so fetches started before the delete cannot resurrect them.
	removed map[string]uint64
}

func NewRoster(backend ports.AccountBackend, session SessionReader, log zerolog.Logger) *Roster {
	return &Roster{
		backend: backend,
		session: session,
		log:     log,
		now:     time.Now,
		removed: make(map[string]uint64),
	}
}

// Fetch retrieves the roster for scope. It never fails: any error resolves to
// an empty roster with LastError set. A response from a fetch that has been
// superseded by a newer one is discarded.
func (r *Roster) Fetch(ctx context.Context, scope domain.Scope) []domain.RemoteEntity {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.scope = scope
	r.loading = true
	r.mu.Unlock()

	var (
		entities []domain.RemoteEntity
		err      error
	)
	identity := r.session.Current()
	switch {
	case !identity.Authenticated():
		err = domain.ErrNoSession
	case !scope.Valid():
		err = fmt.Errorf("%w: scope %q", domain.ErrNoRosterScope, scope)
	default:
		entities, err = r.backend.ListUsers(ctx, identity.Token, scope)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen {
		metrics.RosterFetchesTotal.WithLabelValues("superseded").Inc()
		r.log.Debug().Uint64("generation", gen).Uint64("latest", r.gen).Msg("stale roster response discarded")
		return cloneEntities(r.entities)
	}

	r.loading = false
	r.initialized = true
	r.fetchedAt = r.now()
	if err != nil {
		r.entities = []domain.RemoteEntity{}
		r.lastErr = err
		metrics.RosterFetchesTotal.WithLabelValues("failed").Inc()
		r.log.Warn().Err(err).Str("scope", string(scope)).Msg("roster fetch failed")
	} else {
		r.entities = r.dropRemoved(entities, gen)
		r.lastErr = nil
		metrics.RosterFetchesTotal.WithLabelValues("applied").Inc()
	}
	metrics.RosterSize.Set(float64(len(r.entities)))
	return cloneEntities(r.entities)
}

// dropRemoved filters out ids deleted while a fetch of generation gen or
// earlier was in flight, and forgets tombstones older than gen.
func (r *Roster) dropRemoved(entities []domain.RemoteEntity, gen uint64) []domain.RemoteEntity {
	out := make([]domain.RemoteEntity, 0, len(entities))
	for _, e := range entities {
		if deletedAt, ok := r.removed[e.ID]; ok && deletedAt >= gen {
			continue
		}
		out = append(out, e)
	}
	for id, deletedAt := range r.removed {
		if deletedAt < gen {
			delete(r.removed, id)
		}
	}
	return out
}

// Refresh re-runs the last fetch scope. Before any fetch, or after a reset,
// the scope comes from the session role.
func (r *Roster) Refresh(ctx context.Context) []domain.RemoteEntity {
	r.mu.Lock()
	scope := r.scope
	r.mu.Unlock()
	if scope == "" {
		scope = r.sessionScope()
	}
	return r.Fetch(ctx, scope)
}

// sessionScope is the roster scope of the current role, or "" when the role
// has none.
func (r *Roster) sessionScope() domain.Scope {
	identity := r.session.Current()
	if identity == nil {
		return ""
	}
	scope, err := domain.ScopeFor(identity.Role)
	if err != nil {
		return ""
	}
	return scope
}

// Entities projects the roster onto a category without mutating it.
func (r *Roster) Entities(c domain.Category) []domain.RemoteEntity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.FilterByCategory(r.entities, c)
}

// Loading reports whether the latest fetch is still in flight.
func (r *Roster) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Create asks the backend to add a worker and then re-fetches the roster to
// pick up server-assigned fields. On failure the draft is kept for retry.
func (r *Roster) Create(ctx context.Context, draft domain.WorkerDraft) error {
	r.mu.Lock()
	d := draft
	r.draft = &d
	r.mu.Unlock()

	if err := validateForm(draft); err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	identity := r.session.Current()
	if !identity.Authenticated() {
		return fmt.Errorf("create worker: %w", domain.ErrNoSession)
	}
	if err := r.backend.AddWorker(ctx, identity.Token, draft); err != nil {
		r.log.Warn().Err(err).Str("email", draft.Email).Msg("add worker failed")
		return fmt.Errorf("create worker: %w", err)
	}

	r.mu.Lock()
	r.draft = nil
	r.mu.Unlock()

	r.log.Info().Str("email", draft.Email).Msg("worker created")
	r.Refresh(ctx)
	return nil
}

// Draft returns the retained worker draft, if any.
func (r *Roster) Draft() *domain.WorkerDraft {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.draft == nil {
		return nil
	}
	d := *r.draft
	return &d
}

// DiscardDraft drops a retained draft.
func (r *Roster) DiscardDraft() {
	r.mu.Lock()
	r.draft = nil
	r.mu.Unlock()
}

// Delete removes a user on the backend and, once confirmed, filters it out of
// the roster. On failure the roster is unchanged.
func (r *Roster) Delete(ctx context.Context, id string) error {
	identity := r.session.Current()
	if !identity.Authenticated() {
		return fmt.Errorf("delete user: %w", domain.ErrNoSession)
	}
	if err := r.backend.DeleteUser(ctx, identity.Token, id); err != nil {
		r.log.Warn().Err(err).Str("user_id", id).Msg("delete user failed")
		return fmt.Errorf("delete user: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	kept := make([]domain.RemoteEntity, 0, len(r.entities))
	for _, e := range r.entities {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	r.entities = kept
	r.removed[id] = r.gen
	metrics.RosterSize.Set(float64(len(r.entities)))
	r.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// Reset forgets all cached state, e.g. after logout.
func (r *Roster) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.scope = ""
	r.entities = nil
	r.loading = false
	r.initialized = false
	r.fetchedAt = time.Time{}
	r.lastErr = nil
	r.draft = nil
	r.removed = make(map[string]uint64)
}

// FollowSession resets the roster whenever the session ends or switches to
// another user, so one operator never sees a roster fetched for another.
func (r *Roster) FollowSession(session *SessionService) (unsubscribe func()) {
	r.mu.Lock()
	if current := session.Current(); current != nil {
		r.owner = current.ID
	}
	r.mu.Unlock()

	return session.Subscribe(func(identity *domain.Identity) {
		id := ""
		if identity != nil {
			id = identity.ID
		}
		r.mu.Lock()
		switched := id != r.owner
		r.owner = id
		r.mu.Unlock()
		if switched {
			r.Reset()
		}
	})
}

// Snapshot returns the roster projected onto c.
func (r *Roster) Snapshot(c domain.Category) RosterSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := RosterSnapshot{
		Scope:       r.scope,
		Entities:    domain.FilterByCategory(r.entities, c),
		Loading:     r.loading,
		Initialized: r.initialized,
		FetchedAt:   r.fetchedAt,
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	if r.draft != nil {
		d := *r.draft
		d.Password = ""
		s.Draft = &d
	}
	return s
}

func cloneEntities(in []domain.RemoteEntity) []domain.RemoteEntity {
	return append([]domain.RemoteEntity{}, in...)
}
