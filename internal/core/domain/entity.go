package domain

import (
	"fmt"
	"time"
)

// ActivityWindow is how recent lastActiveAt must be for a user to count as active.
const ActivityWindow = 600000 * time.Millisecond

// RemoteEntity is a cached snapshot of a backend user as seen by a privileged viewer.
type RemoteEntity struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Email        string     `json:"email"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
	IsActive     bool       `json:"isActive"`
}

// ActiveAt reports whether the entity is flagged active and was seen within
// ActivityWindow of now. Recomputed on every call.
func (e RemoteEntity) ActiveAt(now time.Time) bool {
	if !e.IsActive || e.LastActiveAt == nil {
		return false
	}
	return now.Sub(*e.LastActiveAt) < ActivityWindow
}

// Scope is the roster scope hint sent to the backend.
type Scope string

const (
	// ScopeAll lists every user (GET /users).
	ScopeAll Scope = "all"
	// ScopeStaff lists workers and managers (GET /users/workers-managers).
	ScopeStaff Scope = "workers-managers"
)

// Valid reports whether s names a backend roster endpoint.
func (s Scope) Valid() bool {
	return s == ScopeAll || s == ScopeStaff
}

// ScopeFor returns the roster scope a role may request.
func ScopeFor(r Role) (Scope, error) {
	switch r {
	case RoleAdmin:
		return ScopeAll, nil
	case RoleManager:
		return ScopeStaff, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoRosterScope, r)
}

// Category is a client-side roster filter.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryWorkers   Category = "workers"
	CategoryManagers  Category = "managers"
	CategoryAdmins    Category = "admins"
	CategoryCustomers Category = "customers"
)

// ParseCategory accepts "" as CategoryAll.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case "":
		return CategoryAll, nil
	case CategoryAll, CategoryWorkers, CategoryManagers, CategoryAdmins, CategoryCustomers:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
}

// Includes reports whether an entity with role r belongs to the category.
func (c Category) Includes(r Role) bool {
	switch c {
	case CategoryAll:
		return true
	case CategoryWorkers:
		return r == RoleWorker
	case CategoryManagers:
		return r == RoleManager
	case CategoryAdmins:
		return r == RoleAdmin
	case CategoryCustomers:
		return r == RoleCustomer || r == RoleUser
	}
	return false
}

// FilterByCategory projects a roster onto a category. It always returns a
// new slice and preserves relative order.
func FilterByCategory(roster []RemoteEntity, c Category) []RemoteEntity {
	out := make([]RemoteEntity, 0, len(roster))
	for _, e := range roster {
		if c.Includes(e.Role) {
			out = append(out, e)
		}
	}
	return out
}
