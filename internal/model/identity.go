package model

import "strings"

// Roles known to the backend.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated user of a session.  It is established at
// login, replaced on re-login and cleared on logout; nothing mutates it in
// place.
type Identity struct {
	UserID uint64 `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return strings.EqualFold(i.Role, RoleAdmin) }

// DisplayName falls back to a generic name when the backend did not send one.
func (i Identity) DisplayName() string {
	if i.Name == "" {
		return "사용자"
	}
	return i.Name
}
