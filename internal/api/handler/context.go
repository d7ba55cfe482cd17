package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/teamc/account-console/internal/core/domain"
)

// IdentityKey is the echo context key the guard middleware stores the
// admitted identity under.
const IdentityKey = "identity"

// ctxIdentity returns the identity admitted by the guard, falling back to the
// live session for routes outside the guard. A missing identity is
// domain.ErrNoSession.
func ctxIdentity(c echo.Context, session SessionAPI) (*domain.Identity, error) {
	if identity, ok := c.Get(IdentityKey).(*domain.Identity); ok && identity != nil {
		return identity, nil
	}
	if identity := session.CurrentUser(); identity != nil {
		return identity, nil
	}
	return nil, domain.ErrNoSession
}
