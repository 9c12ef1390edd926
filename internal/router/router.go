package router // package router defines how HTTP routes are registered for the web client

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/handler"
)

// Page addresses the JSON responses point the browser at.
const (
	LoginPage      = "/login"
	AdminLoginPage = "/admin/login"
	CompletePage   = "/complete"
)

// RegisterRoutes registers routes that never look at the session.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers login, logout and the header state.  The mutating
// routes share the limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.GET("/header", a.Header)
	g.POST("/login", a.Login, limit)
	g.POST("/admin/login", a.AdminLogin, limit)
	g.POST("/session/token", a.SessionToken, limit)
	g.POST("/logout", a.Logout)
}
