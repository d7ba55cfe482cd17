// Package backend is the REST adapter for the external account backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/core/ports"
	"github.com/teamc/account-console/internal/pkg/metrics"
)

var _ ports.AccountBackend = (*Client)(nil)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20

	headerRequestID = "X-Request-ID"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. https://teamc-backend.onrender.com/api.
	BaseURL string
	// Timeout bounds each round-trip. Defaults to 30s.
	Timeout time.Duration
	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements ports.AccountBackend over net/http.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(opts Options, log zerolog.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: hc,
		log:        log,
	}
}

// ── Wire types ────────────────────────────────────────────────────────────────

type userPayload struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	Email        string     `json:"email"`
	Description  *string    `json:"description"`
	LastActiveAt *time.Time `json:"lastActiveAt"`
	IsActive     bool       `json:"isActive"`
}

type authPayload struct {
	User  *userPayload `json:"user"`
	Token string       `json:"token"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (u *userPayload) entity() (domain.RemoteEntity, error) {
	if u.ID == "" {
		return domain.RemoteEntity{}, fmt.Errorf("%w: user without _id", domain.ErrMalformedResponse)
	}
	role, err := domain.ParseRole(u.Role)
	if err != nil {
		return domain.RemoteEntity{}, err
	}
	return domain.RemoteEntity{
		ID:           u.ID,
		Name:         u.Name,
		Role:         role,
		Email:        u.Email,
		LastActiveAt: u.LastActiveAt,
		IsActive:     u.IsActive,
	}, nil
}

func (a *authPayload) identity() (*domain.Identity, error) {
	if a.User == nil {
		return nil, fmt.Errorf("%w: missing user", domain.ErrMalformedResponse)
	}
	if a.Token == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrMalformedResponse)
	}
	e, err := a.User.entity()
	if err != nil {
		return nil, err
	}
	identity := &domain.Identity{
		ID:    e.ID,
		Name:  e.Name,
		Role:  e.Role,
		Email: e.Email,
		Token: a.Token,
	}
	if a.User.Description != nil && *a.User.Description != "" {
		d := *a.User.Description
		identity.Description = &d
	}
	return identity, nil
}

// ── Operations ────────────────────────────────────────────────────────────────

// Login posts email and password only; the role is decided by the backend.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{creds.Email, creds.Password}

	var out authPayload
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	identity, err := out.identity()
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return identity, nil
}

func (c *Client) Signup(ctx context.Context, form domain.Signup) (*domain.Identity, error) {
	var out authPayload
	if err := c.do(ctx, "signup", http.MethodPost, "/auth/signup", "", form, &out); err != nil {
		return nil, err
	}
	identity, err := out.identity()
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return identity, nil
}

// ListUsers returns the roster for scope in backend order.
func (c *Client) ListUsers(ctx context.Context, token string, scope domain.Scope) ([]domain.RemoteEntity, error) {
	var path string
	switch scope {
	case domain.ScopeAll:
		path = "/users"
	case domain.ScopeStaff:
		path = "/users/workers-managers"
	default:
		return nil, fmt.Errorf("list users: %w: unknown scope %q", domain.ErrValidation, scope)
	}

	var out []userPayload
	if err := c.do(ctx, "list_users", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	entities := make([]domain.RemoteEntity, 0, len(out))
	for i := range out {
		e, err := out[i].entity()
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (c *Client) Ping(ctx context.Context, token string) error {
	return c.do(ctx, "ping", http.MethodGet, "/users/me", token, nil, nil)
}

func (c *Client) UpdateUser(ctx context.Context, token, id string, patch domain.UserPatch) error {
	return c.do(ctx, "update_user", http.MethodPut, "/users/"+url.PathEscape(id), token, patch, nil)
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete_user", http.MethodDelete, "/users/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) AddWorker(ctx context.Context, token string, draft domain.WorkerDraft) error {
	return c.do(ctx, "add_worker", http.MethodPost, "/managers/add-worker", token, draft, nil)
}

// ── Transport ─────────────────────────────────────────────────────────────────

// do performs one round-trip and classifies the outcome into ErrTransport,
// *RejectedError or ErrMalformedResponse. out may be nil when the body is
// not needed.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		metrics.BackendRequestsTotal.WithLabelValues(op, outcome(err)).Inc()
	}()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTransport, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(headerRequestID, reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.With().Str("operation", op).Str("request_id", reqID).Logger()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("backend request failed")
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s: %w: read body: %v", op, domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rejected := &domain.RejectedError{Status: resp.StatusCode, Message: rejectionMessage(resp.StatusCode, raw)}
		log.Debug().Int("status", resp.StatusCode).Str("message", rejected.Message).Msg("backend rejected request")
		return fmt.Errorf("%s: %w", op, rejected)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrMalformedResponse, err)
	}
	return nil
}

// rejectionMessage prefers the JSON "message" field, then the raw text.
func rejectionMessage(status int, raw []byte) string {
	var ep errorPayload
	if err := json.Unmarshal(raw, &ep); err == nil && ep.Message != "" {
		return ep.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(status)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTransport):
		return "transport"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	}
	if _, ok := domain.IsRejected(err); ok {
		return "rejected"
	}
	return "error"
}
