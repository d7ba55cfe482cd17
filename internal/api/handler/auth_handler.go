package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamc/account-console/internal/core/domain"
)

type AuthHandler struct {
	session SessionAPI
}

func NewAuthHandler(session SessionAPI) *AuthHandler {
	return &AuthHandler{session: session}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// userResponse is the identity as shown to the operator. The token stays in
// the session store.
type userResponse struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Role        domain.Role `json:"role"`
	Email       string      `json:"email"`
	Description *string     `json:"description,omitempty"`
}

type authResponse struct {
	User     userResponse `json:"user"`
	View     domain.View  `json:"view"`
	Redirect string       `json:"redirect"`
}

type loginPageResponse struct {
	View          domain.View   `json:"view"`
	Authenticated bool          `json:"authenticated"`
	User          *userResponse `json:"user,omitempty"`
	Home          string        `json:"home,omitempty"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

func toUserResponse(identity *domain.Identity) userResponse {
	return userResponse{
		ID:          identity.ID,
		Name:        identity.Name,
		Role:        identity.Role,
		Email:       identity.Email,
		Description: identity.Clone().Description,
	}
}

// LoginPage describes the entry point.
//
// @Summary      Login entry point
// @Tags         auth
// @Produce      json
// @Success      200  {object}  loginPageResponse
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	resp := loginPageResponse{View: domain.ViewLogin}
	if identity := h.session.CurrentUser(); identity != nil {
		u := toUserResponse(identity)
		resp.Authenticated = true
		resp.User = &u
		resp.Home = domain.HomeView(identity.Role).Path()
	}
	return c.JSON(http.StatusOK, resp)
}

// Login authenticates against the account backend and starts the session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	identity, view, err := h.session.Authenticate(c.Request().Context(), domain.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(identity), View: view, Redirect: view.Path()})
}

// Signup creates an account and starts the session.
//
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	identity, view, err := h.session.Register(c.Request().Context(), domain.Signup{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(identity), View: view, Redirect: view.Path()})
}

// Logout ends the session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.session.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, redirectResponse{Redirect: domain.ViewLogin.Path()})
}

// Home redirects to the caller's dashboard, or to the login entry point.
//
// @Summary      Role home
// @Tags         views
// @Success      303
// @Router       /views/home [get]
func (h *AuthHandler) Home(c echo.Context) error {
	target := domain.ViewLogin
	if identity := h.session.CurrentUser(); identity != nil {
		target = domain.HomeView(identity.Role)
	}
	return c.Redirect(http.StatusSeeOther, target.Path())
}
