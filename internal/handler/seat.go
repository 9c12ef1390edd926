package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/booking"
	"github.com/iliyamo/matchday-seat-client/internal/middleware"
)

// SeatHandler serves the seat page through pooled booking controllers, so
// re-sorting never refetches and one session books one seat at a time.
type SeatHandler struct {
	Pool *booking.Pool
}

func NewSeatHandler(p *booking.Pool) *SeatHandler { return &SeatHandler{Pool: p} }

type bookReq struct {
	Method    string `json:"method"`
	Confirmed bool   `json:"confirmed"`
}

// controller returns the loaded controller of the request's match.
func (h *SeatHandler) controller(c echo.Context, refresh bool) (*booking.Controller, error) {
	matchID, ok := pathID(c, "id")
	if !ok {
		return nil, notice(c, http.StatusBadRequest, "match_id가 없습니다!")
	}
	ctrl := h.Pool.Get(middleware.CurrentSession(c), matchID)
	if refresh || !ctrl.Loaded() {
		ctx, cancel := backendCtx(c)
		defer cancel()
		if err := ctrl.Load(ctx); err != nil {
			return nil, apiFailure(c, err)
		}
	}
	return ctrl, nil
}

// Seats renders the seat list in the requested order (?sort=default|
// price_asc|price_desc).  ?refresh=1 refetches the snapshot.
func (h *SeatHandler) Seats(c echo.Context) error {
	ctrl, err := h.controller(c, c.QueryParam("refresh") == "1")
	if ctrl == nil {
		return err
	}
	mode := booking.ParseSortMode(c.QueryParam("sort"))
	seats, err := ctrl.View(mode)
	if err != nil {
		return seatFailure(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title": fmt.Sprintf("경기 ID: %d 좌석 목록", ctrl.MatchID()),
		"sort":  mode,
		"state": ctrl.State(),
		"seats": seats,
	})
}

// Confirm returns the question shown before booking a seat.
func (h *SeatHandler) Confirm(c echo.Context) error {
	ctrl, err := h.controller(c, false)
	if ctrl == nil {
		return err
	}
	seatID, ok := pathID(c, "seat_id")
	if !ok {
		return notice(c, http.StatusBadRequest, "seat_id가 없습니다!")
	}
	p, err := ctrl.Prompt(seatID)
	if err != nil {
		return seatFailure(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Book runs one booking attempt.  Guests get a login prompt instead of a
// call; every backend outcome is a 200 with the outcome body so the page can
// follow Redirect or show Notice.
func (h *SeatHandler) Book(c echo.Context) error {
	ctrl, err := h.controller(c, false)
	if ctrl == nil {
		return err
	}
	seatID, ok := pathID(c, "seat_id")
	if !ok {
		return notice(c, http.StatusBadRequest, "seat_id가 없습니다!")
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return notice(c, http.StatusBadRequest, "JSON 형식이 올바르지 않습니다.")
	}

	ctx, cancel := backendCtx(c)
	defer cancel()
	out, err := ctrl.Book(ctx, booking.BookRequest{
		SeatID:    seatID,
		Method:    req.Method,
		Confirmed: req.Confirmed,
		ClientIP:  c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return seatFailure(c, err)
	}
	if out.LoginRequired {
		return c.JSON(http.StatusUnauthorized, out)
	}
	return c.JSON(http.StatusOK, out)
}

func seatFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotLoaded):
		return notice(c, http.StatusServiceUnavailable, "좌석 목록을 불러오지 못했습니다.")
	case errors.Is(err, booking.ErrSeatUnavailable):
		return notice(c, http.StatusConflict, "이미 예약된 좌석입니다.")
	case errors.Is(err, booking.ErrBookingInFlight):
		return notice(c, http.StatusConflict, "예매 요청을 처리 중입니다.")
	case errors.Is(err, booking.ErrNotConfirmed):
		return notice(c, http.StatusBadRequest, "좌석 예매 확인이 필요합니다.")
	}
	return apiFailure(c, err)
}
