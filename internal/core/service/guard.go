package service

import "github.com/teamc/account-console/internal/core/domain"

// SessionReader exposes the live identity without write access.
type SessionReader interface {
	Current() *domain.Identity
}

// DecisionReason explains a guard decision.
type DecisionReason string

const (
	ReasonAllowed         DecisionReason = "allowed"
	ReasonUnauthenticated DecisionReason = "unauthenticated"
	ReasonRoleMismatch    DecisionReason = "role_mismatch"
)

// Decision is the outcome of one navigation attempt.
type Decision struct {
	View     domain.View
	Allowed  bool
	Redirect domain.View
	Reason   DecisionReason
}

// Guard decides whether the current session may enter a view. It never
// performs I/O and only mirrors what the backend enforces.
type Guard struct {
	session   SessionReader
	roleAware bool
}

// NewGuard builds a guard. With roleAware false only the presence of an
// identity is checked.
func NewGuard(session SessionReader, roleAware bool) *Guard {
	return &Guard{session: session, roleAware: roleAware}
}

// Evaluate is re-run on every navigation.
func (g *Guard) Evaluate(view domain.View) Decision {
	if !view.Gated() {
		return Decision{View: view, Allowed: true, Reason: ReasonAllowed}
	}

	identity := g.session.Current()
	if !identity.Authenticated() {
		return Decision{View: view, Redirect: domain.ViewLogin, Reason: ReasonUnauthenticated}
	}
	if g.roleAware && !view.Admits(identity.Role) {
		return Decision{View: view, Redirect: domain.HomeView(identity.Role), Reason: ReasonRoleMismatch}
	}
	return Decision{View: view, Allowed: true, Reason: ReasonAllowed}
}
