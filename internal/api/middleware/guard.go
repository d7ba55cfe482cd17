package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamc/account-console/internal/api/handler"
	"github.com/teamc/account-console/internal/core/domain"
	"github.com/teamc/account-console/internal/core/service"
	"github.com/teamc/account-console/internal/pkg/metrics"
)

// Evaluator decides navigation attempts.
type Evaluator interface {
	Evaluate(view domain.View) service.Decision
}

// GuardView runs the access guard on every request to /views/:view. Denied
// navigation is answered with a 303 to the decision's target; admitted
// requests carry the identity under handler.IdentityKey.
func GuardView(guard Evaluator, session service.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			view, ok := domain.ParseView(c.Param("view"))
			if !ok {
				return echo.NewHTTPError(http.StatusNotFound, "unknown view")
			}

			d := guard.Evaluate(view)
			metrics.GuardDecisionsTotal.WithLabelValues(string(view), string(d.Reason)).Inc()
			if !d.Allowed {
				return c.Redirect(http.StatusSeeOther, d.Redirect.Path())
			}

			if identity := session.Current(); identity != nil {
				c.Set(handler.IdentityKey, identity)
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests without a live identity with 401.
func RequireSession(session service.SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := session.Current()
			if !identity.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}
			c.Set(handler.IdentityKey, identity)
			return next(c)
		}
	}
}
