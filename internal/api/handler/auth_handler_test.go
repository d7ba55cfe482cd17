package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/teamc/account-console/internal/core/domain"
)

type stubSession struct {
	current        *domain.Identity
	authenticateFn func(ctx context.Context, creds domain.Credentials) (*domain.Identity, domain.View, error)
	registerFn     func(ctx context.Context, form domain.Signup) (*domain.Identity, domain.View, error)
	logouts        int
}

func (s *stubSession) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Identity, domain.View, error) {
	return s.authenticateFn(ctx, creds)
}

func (s *stubSession) Register(ctx context.Context, form domain.Signup) (*domain.Identity, domain.View, error) {
	return s.registerFn(ctx, form)
}

func (s *stubSession) Logout(context.Context) error {
	s.logouts++
	s.current = nil
	return nil
}

func (s *stubSession) CurrentUser() *domain.Identity { return s.current.Clone() }

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubSession{
		authenticateFn: func(ctx context.Context, creds domain.Credentials) (*domain.Identity, domain.View, error) {
			if creds.Email != "m@x.io" || creds.Password != "pw" {
				t.Fatalf("unexpected credentials: %+v", creds)
			}
			return &domain.Identity{ID: "u1", Name: "Mia", Role: domain.RoleManager, Email: "m@x.io", Token: "secret"}, domain.ViewManager, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/login", `{"email":"m@x.io","password":"pw"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("token leaked into response: %s", rec.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.View != domain.ViewManager || resp.Redirect != "/views/manager" {
		t.Fatalf("unexpected navigation: %+v", resp)
	}
	if resp.User.ID != "u1" || resp.User.Role != domain.RoleManager {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	e := echo.New()
	rejected := &domain.RejectedError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	stub := &stubSession{
		authenticateFn: func(context.Context, domain.Credentials) (*domain.Identity, domain.View, error) {
			return nil, "", rejected
		},
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/login", `{"email":"m@x.io","password":"bad"}`), rec)

	err := h.Login(c)
	if !errors.Is(err, rejected) {
		t.Fatalf("expected the backend rejection, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := echo.New()
	stub := &stubSession{
		authenticateFn: func(context.Context, domain.Credentials) (*domain.Identity, domain.View, error) {
			t.Fatalf("should not be called")
			return nil, "", nil
		},
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/login", "{"), rec)

	err := h.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Signup_Created(t *testing.T) {
	e := echo.New()
	stub := &stubSession{
		registerFn: func(ctx context.Context, form domain.Signup) (*domain.Identity, domain.View, error) {
			if form.Role != domain.RoleCustomer || form.Name != "Cid" {
				t.Fatalf("unexpected form: %+v", form)
			}
			return &domain.Identity{ID: "u9", Name: "Cid", Role: domain.RoleUser, Token: "t"}, domain.ViewCustomer, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	body := `{"name":"Cid","email":"c@x.io","password":"pw","role":"customer"}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/signup", body), rec)

	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/views/customer" {
		t.Fatalf("expected customer dashboard, got %q", resp.Redirect)
	}
}

func TestAuthHandler_Signup_ValidationError(t *testing.T) {
	e := echo.New()
	stub := &stubSession{
		registerFn: func(context.Context, domain.Signup) (*domain.Identity, domain.View, error) {
			return nil, "", domain.ErrEmptyDraft
		},
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/signup", `{}`), rec)

	if err := h.Signup(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := echo.New()
	stub := &stubSession{current: &domain.Identity{ID: "u1", Role: domain.RoleAdmin, Token: "t"}}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.logouts != 1 {
		t.Fatalf("expected one logout, got %d", stub.logouts)
	}
	var resp redirectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/login" {
		t.Fatalf("expected /login, got %q", resp.Redirect)
	}
}

func TestAuthHandler_LoginPage(t *testing.T) {
	e := echo.New()
	stub := &stubSession{}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/login", nil), rec)
	if err := h.LoginPage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var anon loginPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &anon); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if anon.Authenticated || anon.User != nil {
		t.Fatalf("expected anonymous login page, got %+v", anon)
	}

	stub.current = &domain.Identity{ID: "u2", Role: domain.RoleWorker, Token: "t"}
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/login", nil), rec)
	if err := h.LoginPage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var signedIn loginPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &signedIn); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !signedIn.Authenticated || signedIn.Home != "/views/worker" {
		t.Fatalf("expected worker home, got %+v", signedIn)
	}
}

func TestAuthHandler_Home(t *testing.T) {
	cases := []struct {
		name     string
		identity *domain.Identity
		want     string
	}{
		{"anonymous", nil, "/login"},
		{"admin", &domain.Identity{ID: "a", Role: domain.RoleAdmin, Token: "t"}, "/views/admin"},
		{"legacy user", &domain.Identity{ID: "c", Role: domain.RoleUser, Token: "t"}, "/views/customer"},
	}

	for _, tc := range cases {
		e := echo.New()
		h := NewAuthHandler(&stubSession{current: tc.identity})
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/views/home", nil), rec)

		if err := h.Home(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", tc.name, rec.Code)
		}
		if got := rec.Header().Get(echo.HeaderLocation); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
