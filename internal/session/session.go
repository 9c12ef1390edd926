// Package session owns the per-browser state of the web client: who is
// logged in, with which role, and which backend tokens they hold.  Accessor
// is the only code that reads or writes it; controllers receive a Session
// value at construction.
package session

import (
	"strconv"

	"github.com/iliyamo/matchday-seat-client/internal/model"
)

// Keys of the durable record.  They mirror the names the browser client used
// in local storage.
const (
	keyUserID     = "user_id"
	keyUserName   = "user_name"
	keyUserRole   = "user_role"
	keyIsAdmin    = "is_admin"
	keyAdminID    = "admin_id"
	keyAdminEmail = "admin_email"
	keyAccess     = "access"
	keyRefresh    = "refresh"
)

// Session is an immutable snapshot of one browser's state.  Replace it via
// Accessor.Save; never mutate a Session another component holds.
type Session struct {
	ID           string
	Identity     *model.Identity
	IsAdmin      bool
	AdminID      uint64
	AdminEmail   string
	AccessToken  string
	RefreshToken string
}

// LoggedIn reports whether an identity is present.
func (s Session) LoggedIn() bool { return s.Identity != nil && s.Identity.UserID != 0 }

// Admin reports whether the session passed the admin login: the identity
// must carry the admin role and the admin flag must be set.
func (s Session) Admin() bool {
	return s.LoggedIn() && s.Identity.IsAdmin() && s.IsAdmin
}

// UserID returns the logged-in user's id or zero.
func (s Session) UserID() uint64 {
	if s.Identity == nil {
		return 0
	}
	return s.Identity.UserID
}

// WithIdentity returns a copy of s bound to id.
func (s Session) WithIdentity(id model.Identity) Session {
	s.Identity = &id
	return s
}

// WithAdmin returns a copy of s marked as an admin session.
func (s Session) WithAdmin(adminID uint64, email string) Session {
	s.IsAdmin = true
	s.AdminID = adminID
	s.AdminEmail = email
	return s
}

func (s Session) values() map[string]string {
	v := map[string]string{}
	if s.Identity != nil {
		v[keyUserID] = strconv.FormatUint(s.Identity.UserID, 10)
		v[keyUserName] = s.Identity.Name
		v[keyUserRole] = s.Identity.Role
	}
	if s.IsAdmin {
		v[keyIsAdmin] = "true"
		v[keyAdminID] = strconv.FormatUint(s.AdminID, 10)
		v[keyAdminEmail] = s.AdminEmail
	}
	if s.AccessToken != "" {
		v[keyAccess] = s.AccessToken
	}
	if s.RefreshToken != "" {
		v[keyRefresh] = s.RefreshToken
	}
	return v
}

func fromValues(id string, v map[string]string) Session {
	s := Session{
		ID:           id,
		AccessToken:  v[keyAccess],
		RefreshToken: v[keyRefresh],
		AdminEmail:   v[keyAdminEmail],
		IsAdmin:      v[keyIsAdmin] == "true",
	}
	if uid, err := strconv.ParseUint(v[keyUserID], 10, 64); err == nil && uid > 0 {
		role := v[keyUserRole]
		if role == "" {
			role = model.RoleUser
		}
		s.Identity = &model.Identity{UserID: uid, Name: v[keyUserName], Role: role}
	}
	if aid, err := strconv.ParseUint(v[keyAdminID], 10, 64); err == nil {
		s.AdminID = aid
	}
	return s
}
