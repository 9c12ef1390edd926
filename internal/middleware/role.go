package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Notices shown by the page gates.  They match the messages the browser
// pages displayed before redirecting.
const (
	noticeLoginRequired = "로그인이 필요합니다."
	noticeAdminRequired = "관리자 로그인이 필요합니다."
)

// RequireLogin aborts with 401 unless the session loaded by LoadSession has
// an identity.  The body tells the page where to send the user.
func RequireLogin(loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).LoggedIn() {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"error":          noticeLoginRequired,
					"login_required": true,
					"redirect":       loginURL,
				})
			}
			return next(c)
		}
	}
}

// RequireAdmin aborts with 403 unless the session passed the admin login.
// A role claim alone is not enough; the admin flag set by the admin login
// must be present too.
func RequireAdmin(loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).Admin() {
				return c.JSON(http.StatusForbidden, map[string]any{
					"error":    noticeAdminRequired,
					"redirect": loginURL,
				})
			}
			return next(c)
		}
	}
}
