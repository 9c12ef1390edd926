package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/middleware"
	"github.com/iliyamo/matchday-seat-client/internal/report"
)

// AdminHandler serves the admin reports.  Routes are behind RequireAdmin;
// report views carry their own empty and failure states, so they are always
// answered with 200.
type AdminHandler struct {
	API *api.Client
}

func NewAdminHandler(a *api.Client) *AdminHandler { return &AdminHandler{API: a} }

func (h *AdminHandler) controller(c echo.Context) *report.Controller {
	s := middleware.CurrentSession(c)
	client := h.API
	if s.AccessToken != "" {
		client = client.WithToken(s.AccessToken)
	}
	return report.NewController(s, client)
}

func (h *AdminHandler) MatchStats(c echo.Context) error {
	ctx, cancel := backendCtx(c)
	defer cancel()
	v, err := h.controller(c).MatchStats(ctx)
	if err != nil {
		return reportFailure(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *AdminHandler) AbuseCandidates(c echo.Context) error {
	ctx, cancel := backendCtx(c)
	defer cancel()
	v, err := h.controller(c).AbuseCandidates(ctx)
	if err != nil {
		return reportFailure(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// CancelHistory accepts optional user_id and match_id filters.
func (h *AdminHandler) CancelHistory(c echo.Context) error {
	f, ok := filterFrom(c)
	if !ok {
		return notice(c, http.StatusBadRequest, "user_id와 match_id는 숫자여야 합니다.")
	}
	ctx, cancel := backendCtx(c)
	defer cancel()
	v, err := h.controller(c).CancelHistory(ctx, f)
	if err != nil {
		return reportFailure(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// CancelHistoryDetail is one user's history for one match; both ids are
// required.
func (h *AdminHandler) CancelHistoryDetail(c echo.Context) error {
	f, ok := filterFrom(c)
	if !ok {
		return notice(c, http.StatusBadRequest, "user_id와 match_id가 필요합니다.")
	}
	ctx, cancel := backendCtx(c)
	defer cancel()
	v, err := h.controller(c).UserCancelHistory(ctx, f)
	if err != nil {
		return reportFailure(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":  fmt.Sprintf("사용자 %d, 경기 %d 취소 이력", f.UserID, f.MatchID),
		"report": v,
	})
}

func filterFrom(c echo.Context) (report.Filter, bool) {
	uid, err1 := queryID(c, "user_id")
	mid, err2 := queryID(c, "match_id")
	return report.Filter{UserID: uid, MatchID: mid}, err1 == nil && err2 == nil
}

func reportFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, report.ErrAdminRequired):
		return notice(c, http.StatusForbidden, "관리자만 접근할 수 있습니다.")
	case errors.Is(err, report.ErrFilterMissing):
		return notice(c, http.StatusBadRequest, "user_id와 match_id가 필요합니다.")
	}
	return apiFailure(c, err)
}
