package domain

import "fmt"

// Role is the account role assigned by the backend.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleWorker   Role = "worker"
	RoleCustomer Role = "customer"
	// RoleUser is the legacy name of the customer role still issued by signup.
	RoleUser Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleWorker, RoleCustomer, RoleUser:
		return true
	}
	return false
}

// ParseRole converts a raw backend value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrMalformedResponse, s)
	}
	return r, nil
}

// View names a screen of the console.
type View string

const (
	ViewLogin    View = "login"
	ViewAdmin    View = "admin"
	ViewManager  View = "manager"
	ViewWorker   View = "worker"
	ViewCustomer View = "customer"
)

// viewAudience lists the roles a gated view is intended for.
var viewAudience = map[View][]Role{
	ViewAdmin:    {RoleAdmin},
	ViewManager:  {RoleManager},
	ViewWorker:   {RoleWorker},
	ViewCustomer: {RoleCustomer, RoleUser},
}

// Gated reports whether entering v requires a session.
func (v View) Gated() bool {
	_, ok := viewAudience[v]
	return ok
}

// Admits reports whether role r is the intended audience of v. The login
// entry point admits everyone.
func (v View) Admits(r Role) bool {
	roles, ok := viewAudience[v]
	if !ok {
		return true
	}
	for _, allowed := range roles {
		if allowed == r {
			return true
		}
	}
	return false
}

// Path is the console route of the view.
func (v View) Path() string {
	if v == ViewLogin {
		return "/login"
	}
	return "/views/" + string(v)
}

// ParseView converts a route segment into a gated View.
func ParseView(s string) (View, bool) {
	v := View(s)
	return v, v.Gated()
}

// HomeView is the dashboard a role lands on after login.
func HomeView(r Role) View {
	switch r {
	case RoleAdmin:
		return ViewAdmin
	case RoleManager:
		return ViewManager
	case RoleWorker:
		return ViewWorker
	case RoleCustomer, RoleUser:
		return ViewCustomer
	default:
		return ViewLogin
	}
}
