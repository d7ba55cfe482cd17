package domain

// Credentials is the login form. Role is never sent on login.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup is the account creation form.
type Signup struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role"     validate:"required,oneof=admin manager worker customer user"`
}

// WorkerDraft is a manager's pending worker creation.
type WorkerDraft struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EditMode is the state of a field editor.
type EditMode string

const (
	ModeViewing    EditMode = "viewing"
	ModeEditing    EditMode = "editing"
	ModeSubmitting EditMode = "submitting"
)
