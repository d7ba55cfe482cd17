package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamc/account-console/internal/core/domain"
)

// RosterHandler drives the roster from the admin and manager dashboards.
type RosterHandler struct {
	session SessionAPI
	roster  RosterAPI
}

func NewRosterHandler(session SessionAPI, roster RosterAPI) *RosterHandler {
	return &RosterHandler{session: session, roster: roster}
}

type workerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Refresh re-fetches the caller's roster.
//
// @Summary      Refresh roster
// @Tags         roster
// @Produce      json
// @Param        category  query  string  false  "all, workers, managers, admins, customers"
// @Success      200  {object}  service.RosterSnapshot
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /roster/refresh [post]
func (h *RosterHandler) Refresh(c echo.Context) error {
	identity, err := ctxIdentity(c, h.session)
	if err != nil {
		return err
	}
	scope, err := domain.ScopeFor(identity.Role)
	if err != nil {
		return err
	}
	category, err := domain.ParseCategory(c.QueryParam("category"))
	if err != nil {
		return err
	}

	h.roster.Fetch(c.Request().Context(), scope)
	return c.JSON(http.StatusOK, h.roster.Snapshot(category))
}

// CreateWorker adds a worker through the backend and re-fetches the roster.
//
// @Summary      Add worker
// @Tags         roster
// @Accept       json
// @Produce      json
// @Param        body  body      workerRequest  true  "Worker details"
// @Success      201   {object}  service.RosterSnapshot
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /roster/workers [post]
func (h *RosterHandler) CreateWorker(c echo.Context) error {
	identity, err := ctxIdentity(c, h.session)
	if err != nil {
		return err
	}
	if identity.Role != domain.RoleManager {
		return echo.NewHTTPError(http.StatusForbidden, "only managers add workers")
	}

	var req workerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.roster.Create(c.Request().Context(), domain.WorkerDraft{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.roster.Snapshot(domain.CategoryAll))
}

// DiscardDraft drops a worker draft retained after a failed create.
//
// @Summary      Discard worker draft
// @Tags         roster
// @Success      204
// @Router       /roster/workers/draft [delete]
func (h *RosterHandler) DiscardDraft(c echo.Context) error {
	h.roster.DiscardDraft()
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a user and filters it out of the roster.
//
// @Summary      Delete user
// @Tags         roster
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /roster/{id} [delete]
func (h *RosterHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c, h.session)
	if err != nil {
		return err
	}
	if _, err := domain.ScopeFor(identity.Role); err != nil {
		return err
	}

	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id")
	}
	if err := h.roster.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
