package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/core/service"
)

// Dashboard actions offered per view.
const (
	ActionEditProfile   = "edit_profile"
	ActionDeleteProfile = "delete_profile"
	ActionAddWorker     = "add_worker"
	ActionDeleteWorker  = "delete_worker"
	ActionRefresh       = "refresh_roster"
)

// ViewHandler renders the role dashboards as JSON documents.
type ViewHandler struct {
	session SessionAPI
	roster  RosterAPI
	profile ProfileAPI
	now     func() time.Time
}

func NewViewHandler(session SessionAPI, roster RosterAPI, profile ProfileAPI) *ViewHandler {
	return &ViewHandler{session: session, roster: roster, profile: profile, now: time.Now}
}

type rosterRow struct {
	ID           string      `json:"_id"`
	Name         string      `json:"name"`
	Role         domain.Role `json:"role"`
	Email        string      `json:"email"`
	LastActiveAt *time.Time  `json:"lastActiveAt,omitempty"`
	Active       bool        `json:"active"`
	Deletable    bool        `json:"deletable"`
}

type rosterDocument struct {
	Scope       domain.Scope        `json:"scope"`
	Category    domain.Category     `json:"category"`
	Loading     bool                `json:"loading"`
	Initialized bool                `json:"initialized"`
	LastError   string              `json:"lastError,omitempty"`
	Draft       *domain.WorkerDraft `json:"draft,omitempty"`
	Rows        []rosterRow         `json:"rows"`
}

type viewDocument struct {
	View    domain.View              `json:"view"`
	User    userResponse             `json:"user"`
	Editors []service.EditorSnapshot `json:"editors,omitempty"`
	Roster  *rosterDocument          `json:"roster,omitempty"`
	Actions []string                 `json:"actions"`
}

// Show renders one dashboard. The guard middleware has already admitted the
// caller.
//
// @Summary      Role dashboard
// @Tags         views
// @Produce      json
// @Param        view      path   string  true   "admin, manager, worker or customer"
// @Param        category  query  string  false  "all, workers, managers, admins, customers"
// @Success      200  {object}  viewDocument
// @Success      303
// @Failure      400  {object}  map[string]string
// @Router       /views/{view} [get]
func (h *ViewHandler) Show(c echo.Context) error {
	view, ok := domain.ParseView(c.Param("view"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown view")
	}
	identity, err := ctxIdentity(c, h.session)
	if err != nil {
		return err
	}
	category, err := domain.ParseCategory(c.QueryParam("category"))
	if err != nil {
		return err
	}

	doc := viewDocument{View: view, User: toUserResponse(identity)}
	switch view {
	case domain.ViewAdmin:
		doc.Roster = h.rosterDocument(c, domain.ScopeAll, category, false)
		doc.Actions = []string{ActionRefresh}
	case domain.ViewManager:
		doc.Roster = h.rosterDocument(c, domain.ScopeStaff, category, true)
		doc.Actions = []string{ActionRefresh, ActionAddWorker, ActionDeleteWorker, ActionDeleteProfile}
	case domain.ViewWorker, domain.ViewCustomer:
		h.profile.Ping(c.Request().Context())
		doc.Editors = h.editors()
		doc.Actions = []string{ActionEditProfile, ActionDeleteProfile}
	}

	return c.JSON(http.StatusOK, doc)
}

// rosterDocument fetches on first render of a scope and projects the cached
// roster onto category.
func (h *ViewHandler) rosterDocument(c echo.Context, scope domain.Scope, category domain.Category, workersDeletable bool) *rosterDocument {
	if snap := h.roster.Snapshot(domain.CategoryAll); !snap.Initialized || snap.Scope != scope {
		h.roster.Fetch(c.Request().Context(), scope)
	}
	snap := h.roster.Snapshot(category)

	now := h.now()
	rows := make([]rosterRow, 0, len(snap.Entities))
	for _, e := range snap.Entities {
		rows = append(rows, rosterRow{
			ID:           e.ID,
			Name:         e.Name,
			Role:         e.Role,
			Email:        e.Email,
			LastActiveAt: e.LastActiveAt,
			Active:       e.ActiveAt(now),
			Deletable:    workersDeletable && e.Role == domain.RoleWorker,
		})
	}
	return &rosterDocument{
		Scope:       snap.Scope,
		Category:    category,
		Loading:     snap.Loading,
		Initialized: snap.Initialized,
		LastError:   snap.LastError,
		Draft:       snap.Draft,
		Rows:        rows,
	}
}

func (h *ViewHandler) editors() []service.EditorSnapshot {
	out := make([]service.EditorSnapshot, 0, 2)
	for _, field := range []string{service.FieldName, service.FieldDescription} {
		if e, err := h.profile.Editor(field); err == nil {
			out = append(out, e.Snapshot())
		}
	}
	return out
}
