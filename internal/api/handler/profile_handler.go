package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/core/service"
)

// ProfileHandler exposes the self editors and account deletion.
type ProfileHandler struct {
	profile ProfileAPI
}

func NewProfileHandler(profile ProfileAPI) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

type draftRequest struct {
	Value string `json:"value"`
}

type editorsResponse struct {
	Editors []service.EditorSnapshot `json:"editors"`
}

func (h *ProfileHandler) editor(c echo.Context) (*service.FieldEditor, error) {
	return h.profile.Editor(c.Param("field"))
}

// Show returns both self editors.
//
// @Summary      Profile editors
// @Tags         profile
// @Produce      json
// @Success      200  {object}  editorsResponse
// @Failure      401  {object}  map[string]string
// @Router       /profile [get]
func (h *ProfileHandler) Show(c echo.Context) error {
	resp := editorsResponse{Editors: make([]service.EditorSnapshot, 0, 2)}
	for _, field := range []string{service.FieldName, service.FieldDescription} {
		e, err := h.profile.Editor(field)
		if err != nil {
			return err
		}
		resp.Editors = append(resp.Editors, e.Snapshot())
	}
	return c.JSON(http.StatusOK, resp)
}

// Begin enters Editing.
//
// @Summary      Begin editing a field
// @Tags         profile
// @Produce      json
// @Param        field  path  string  true  "name or description"
// @Success      200  {object}  service.EditorSnapshot
// @Failure      409  {object}  map[string]string
// @Router       /profile/{field}/begin [post]
func (h *ProfileHandler) Begin(c echo.Context) error {
	e, err := h.editor(c)
	if err != nil {
		return err
	}
	if err := e.Begin(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e.Snapshot())
}

// Draft stages a local edit.
//
// @Summary      Update a field draft
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        field  path  string        true  "name or description"
// @Param        body   body  draftRequest  true  "Draft value"
// @Success      200  {object}  service.EditorSnapshot
// @Failure      409  {object}  map[string]string
// @Router       /profile/{field}/draft [post]
func (h *ProfileHandler) Draft(c echo.Context) error {
	e, err := h.editor(c)
	if err != nil {
		return err
	}
	var req draftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := e.SetDraft(req.Value); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e.Snapshot())
}

// Submit sends the draft to the backend.
//
// @Summary      Submit a field
// @Tags         profile
// @Produce      json
// @Param        field  path  string  true  "name or description"
// @Success      200  {object}  service.EditorSnapshot
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /profile/{field}/submit [post]
func (h *ProfileHandler) Submit(c echo.Context) error {
	e, err := h.editor(c)
	if err != nil {
		return err
	}
	if err := e.Submit(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e.Snapshot())
}

// Cancel discards the draft.
//
// @Summary      Cancel editing a field
// @Tags         profile
// @Produce      json
// @Param        field  path  string  true  "name or description"
// @Success      200  {object}  service.EditorSnapshot
// @Router       /profile/{field}/cancel [post]
func (h *ProfileHandler) Cancel(c echo.Context) error {
	e, err := h.editor(c)
	if err != nil {
		return err
	}
	if err := e.Cancel(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e.Snapshot())
}

// ClearDescription removes the description on the backend.
//
// @Summary      Clear description
// @Tags         profile
// @Produce      json
// @Success      200  {object}  service.EditorSnapshot
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /profile/description [delete]
func (h *ProfileHandler) ClearDescription(c echo.Context) error {
	e, err := h.profile.Editor(service.FieldDescription)
	if err != nil {
		return err
	}
	if err := e.Clear(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e.Snapshot())
}

// DeleteSelf deletes the caller's account and logs out.
//
// @Summary      Delete own account
// @Tags         profile
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /profile [delete]
func (h *ProfileHandler) DeleteSelf(c echo.Context) error {
	if err := h.profile.DeleteSelf(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, redirectResponse{Redirect: domain.ViewLogin.Path()})
}
