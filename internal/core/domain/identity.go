package domain

// Identity is the session record of the authenticated operator. It is the
// backend user object merged with the access token, persisted as one blob.
type Identity struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Role        Role    `json:"role"`
	Email       string  `json:"email"`
	Token       string  `json:"token"`
	Description *string `json:"description,omitempty"`
}

// Authenticated reports whether the identity carries an access token.
func (i *Identity) Authenticated() bool {
	return i != nil && i.Token != ""
}

// HasDescription distinguishes a description that was never set (or cleared)
// from one that holds text.
func (i *Identity) HasDescription() bool {
	return i != nil && i.Description != nil && *i.Description != ""
}

// DescriptionText returns the description or "" when unset.
func (i *Identity) DescriptionText() string {
	if !i.HasDescription() {
		return ""
	}
	return *i.Description
}

// Clone returns a deep copy so callers never share the store's value.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.Description != nil {
		d := *i.Description
		c.Description = &d
	}
	return &c
}

// Apply merges a confirmed patch. ID, Role and Token are never touched.
// An empty description is stored as unset.
func (i *Identity) Apply(p UserPatch) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		if *p.Description == "" {
			i.Description = nil
		} else {
			d := *p.Description
			i.Description = &d
		}
	}
}

// UserPatch is a partial update of a user record (PUT /users/:id).
type UserPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// NamePatch builds a patch touching only the name.
func NamePatch(name string) UserPatch {
	return UserPatch{Name: &name}
}

// DescriptionPatch builds a patch touching only the description.
func DescriptionPatch(description string) UserPatch {
	return UserPatch{Description: &description}
}
