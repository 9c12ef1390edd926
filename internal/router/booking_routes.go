package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/handler"
)

// RegisterBooking registers the match list, the seat page and the
// completion page.  Only the match list is cached: seat lists are the state
// the booking flow reconciles against.  Booking is not gated by login; the
// handler answers guests with a login prompt.
func RegisterBooking(e *echo.Echo, m *handler.MatchHandler, s *handler.SeatHandler, done *handler.CompleteHandler, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.GET("/matches", m.ListMatches, cache)
	g.GET("/matches/:id/seats", s.Seats)
	g.GET("/matches/:id/seats/:seat_id/confirm", s.Confirm)
	g.POST("/matches/:id/seats/:seat_id/book", s.Book, limit)
	g.GET("/complete", done.Complete)
	g.GET("/complete/receipt.pdf", done.ReceiptPDF)
}

// RegisterMyPage registers the reservation history of the logged-in user.
func RegisterMyPage(e *echo.Echo, h *handler.MyPageHandler, requireLogin, limit echo.MiddlewareFunc) {
	g := e.Group("/api/mypage", requireLogin)
	g.GET("/reservations", h.List)
	g.POST("/reservations/:id/cancel", h.Cancel, limit)
}
