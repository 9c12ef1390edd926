package middleware

// identity.go carries the request's session through the Echo context.
// LoadSession stores it; handlers and the other middleware read it back with
// CurrentSession.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/session"
)

const (
	sessionCtxKey = "session"
	issuedCtxKey  = "session_issued"
)

// CurrentSession returns the session LoadSession stored, or an empty one.
func CurrentSession(c echo.Context) session.Session {
	if s, ok := c.Get(sessionCtxKey).(session.Session); ok {
		return s
	}
	return session.Session{}
}

// SetSession replaces the request's session, e.g. after a login.
func SetSession(c echo.Context, s session.Session) { c.Set(sessionCtxKey, s) }

// LoadSession reads the session of every request.  A visitor without a
// session cookie is issued an id.  A session that holds an access token but
// no identity is resolved through userInfo once and saved.  Backend failures
// degrade to a logged-out session; they never fail the request.
func LoadSession(acc *session.Accessor, userInfo session.UserInfoFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			s, err := acc.Load(r)
			if err != nil {
				c.Logger().Warnf("[session] load failed: %v", err)
				s = session.Session{ID: s.ID}
			}
			if userInfo != nil {
				resolved, changed, err := session.Resolve(r.Context(), s, userInfo)
				if err != nil {
					c.Logger().Infof("[session] userinfo failed: %v", err)
				}
				if changed {
					if saved, err := acc.Save(c.Response(), r, resolved); err != nil {
						c.Logger().Warnf("[session] save resolved identity failed: %v", err)
					} else {
						resolved = saved
					}
					s = resolved
				}
			}
			if s.ID == "" {
				if issued, err := acc.Issue(c.Response(), r); err != nil {
					c.Logger().Warnf("[session] issue failed: %v", err)
				} else {
					s = issued
					c.Set(issuedCtxKey, true)
				}
			}
			SetSession(c, s)
			return next(c)
		}
	}
}

// sessionKey identifies the caller for rate limiting.  An id issued on this
// very request proves nothing (a client that drops cookies gets a new one
// each time), so such callers and callers without a session are keyed by
// their address.
func sessionKey(c echo.Context) string {
	fresh, _ := c.Get(issuedCtxKey).(bool)
	if s := CurrentSession(c); s.ID != "" && !fresh {
		return s.ID
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip-" + ip
}
