package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/middleware"
	"github.com/iliyamo/matchday-seat-client/internal/reservation"
	"github.com/iliyamo/matchday-seat-client/internal/session"
)

// MyPageHandler serves the reservation history.  Routes are behind
// RequireLogin.
type MyPageHandler struct {
	API *api.Client
}

func NewMyPageHandler(a *api.Client) *MyPageHandler { return &MyPageHandler{API: a} }

type cancelReq struct {
	Confirmed bool `json:"confirmed"`
}

func (h *MyPageHandler) controller(s session.Session) *reservation.Controller {
	client := h.API
	if s.AccessToken != "" {
		client = client.WithToken(s.AccessToken)
	}
	return reservation.NewController(s, client)
}

func (h *MyPageHandler) List(c echo.Context) error {
	s := middleware.CurrentSession(c)
	ctx, cancel := backendCtx(c)
	defer cancel()

	listing, err := h.controller(s).List(ctx)
	if err != nil {
		return reservationFailure(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":   fmt.Sprintf("%s님 마이페이지", s.Identity.DisplayName()),
		"listing": listing,
	})
}

// Cancel cancels one reservation.  Without {"confirmed": true} it only
// returns the confirmation question.
func (h *MyPageHandler) Cancel(c echo.Context) error {
	resID, ok := pathID(c, "id")
	if !ok {
		return notice(c, http.StatusBadRequest, "예매 번호가 필요합니다.")
	}
	var req cancelReq
	if err := c.Bind(&req); err != nil {
		return notice(c, http.StatusBadRequest, "JSON 형식이 올바르지 않습니다.")
	}
	if !req.Confirmed {
		return c.JSON(http.StatusOK, echo.Map{"confirm": reservation.ConfirmMessage(resID)})
	}

	ctx, cancel := backendCtx(c)
	defer cancel()
	out, err := h.controller(middleware.CurrentSession(c)).Cancel(ctx, resID, true)
	if err != nil {
		return reservationFailure(c, err)
	}
	status := http.StatusOK
	if !out.Cancelled {
		status = http.StatusConflict
	}
	return c.JSON(status, out)
}

func reservationFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, reservation.ErrLoginRequired):
		return notice(c, http.StatusUnauthorized, "로그인이 필요합니다.")
	case errors.Is(err, reservation.ErrNotCancelable):
		return notice(c, http.StatusConflict, "취소할 수 없는 예매입니다.")
	case errors.Is(err, reservation.ErrCancelInFlight):
		return notice(c, http.StatusConflict, "예매 취소 요청을 처리 중입니다.")
	case errors.Is(err, reservation.ErrNotConfirmed):
		return notice(c, http.StatusBadRequest, "예매 취소 확인이 필요합니다.")
	}
	if api.IsRejection(err) || api.IsTransport(err) {
		return notice(c, http.StatusBadGateway, "예매 내역을 불러오지 못했습니다.")
	}
	return apiFailure(c, err)
}
