package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/handler"
)

// RegisterAdmin registers the admin reports.  Every route needs a session
// that passed the admin login.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, requireAdmin echo.MiddlewareFunc) {
	g := e.Group("/api/admin", requireAdmin)
	g.GET("/match-stats", h.MatchStats)
	g.GET("/abuse", h.AbuseCandidates)
	g.GET("/cancel-history", h.CancelHistory)
	g.GET("/cancel-history/detail", h.CancelHistoryDetail)
}
