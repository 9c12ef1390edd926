package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/booking"
	"github.com/iliyamo/matchday-seat-client/internal/middleware"
	"github.com/iliyamo/matchday-seat-client/internal/model"
	"github.com/iliyamo/matchday-seat-client/internal/session"
)

// AuthHandler owns login, logout and the page header.
type AuthHandler struct {
	API      *api.Client
	Sessions *session.Accessor
	Seats    *booking.Pool
}

func NewAuthHandler(a *api.Client, s *session.Accessor, seats *booking.Pool) *AuthHandler {
	return &AuthHandler{API: a, Sessions: s, Seats: seats}
}

// ----- DTOs -----

type loginReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type tokenReq struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type adminLoginReq struct {
	Email string `json:"email"`
}

type headerResp struct {
	LoggedIn  bool   `json:"logged_in"`
	Greeting  string `json:"greeting,omitempty"`
	UserID    uint64 `json:"user_id,omitempty"`
	Role      string `json:"role,omitempty"`
	ShowLogin bool   `json:"show_login"`
	ShowMy    bool   `json:"show_mypage"`
	ShowAdmin bool   `json:"show_admin"`
}

// Header tells the page which links to show.  Users see "my page", admins
// see the admin link, guests see the login link.
func (h *AuthHandler) Header(c echo.Context) error {
	s := middleware.CurrentSession(c)
	if !s.LoggedIn() {
		return c.JSON(http.StatusOK, headerResp{ShowLogin: true})
	}
	id := *s.Identity
	return c.JSON(http.StatusOK, headerResp{
		LoggedIn:  true,
		Greeting:  fmt.Sprintf("%s님 환영합니다!", id.DisplayName()),
		UserID:    id.UserID,
		Role:      strings.ToLower(id.Role),
		ShowMy:    !id.IsAdmin(),
		ShowAdmin: id.IsAdmin(),
	})
}

// Login: the backend creates the user on first login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return notice(c, http.StatusBadRequest, "JSON 형식이 올바르지 않습니다.")
	}
	ctx, cancel := backendCtx(c)
	defer cancel()

	res, err := h.API.Login(ctx, api.LoginRequest{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		return apiFailure(c, err)
	}
	cur := middleware.CurrentSession(c)
	s, err := h.Sessions.Save(c.Response(), c.Request(), session.Session{ID: cur.ID}.WithIdentity(res.Identity))
	if err != nil {
		c.Logger().Errorf("[auth] save session: %v", err)
		return notice(c, http.StatusInternalServerError, noticeServerError)
	}
	middleware.SetSession(c, s)
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("%s님 로그인 완료! (user_id=%d)", res.Identity.DisplayName(), res.Identity.UserID),
		"user_id": res.Identity.UserID,
		"name":    res.Identity.Name,
		"is_new":  res.IsNew,
	})
}

// AdminLogin accepts only accounts the backend reports with the admin role.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return notice(c, http.StatusBadRequest, "JSON 형식이 올바르지 않습니다.")
	}
	ctx, cancel := backendCtx(c)
	defer cancel()

	res, err := h.API.AdminLogin(ctx, req.Email)
	if err != nil {
		return apiFailure(c, err)
	}
	if !res.Identity.IsAdmin() {
		return notice(c, http.StatusUnauthorized, "관리자 계정을 찾을 수 없습니다.")
	}
	cur := middleware.CurrentSession(c)
	s := session.Session{ID: cur.ID}.WithIdentity(res.Identity).WithAdmin(res.Identity.UserID, res.Email)
	if s, err = h.Sessions.Save(c.Response(), c.Request(), s); err != nil {
		c.Logger().Errorf("[auth] save admin session: %v", err)
		return notice(c, http.StatusInternalServerError, noticeServerError)
	}
	middleware.SetSession(c, s)
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "관리자로 로그인되었습니다.",
		"redirect": "/admin",
	})
}

// SessionToken adopts backend tokens the browser already holds.  The access
// token is resolved to an identity through userinfo before anything is
// stored; the tokens then stay in the session and authorize later calls.
func (h *AuthHandler) SessionToken(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return notice(c, http.StatusBadRequest, "JSON 형식이 올바르지 않습니다.")
	}
	req.Access = strings.TrimSpace(req.Access)
	if req.Access == "" {
		return notice(c, http.StatusBadRequest, "access 토큰이 필요합니다.")
	}
	if session.TokenExpired(req.Access) {
		return notice(c, http.StatusUnauthorized, "토큰이 만료되었습니다. 다시 로그인해주세요.")
	}
	ctx, cancel := backendCtx(c)
	defer cancel()

	cur := middleware.CurrentSession(c)
	s := session.Session{ID: cur.ID, AccessToken: req.Access, RefreshToken: strings.TrimSpace(req.Refresh)}
	s, _, err := session.Resolve(ctx, s, func(ctx context.Context, token string) (model.Identity, error) {
		return h.API.WithToken(token).UserInfo(ctx)
	})
	if err != nil {
		return apiFailure(c, err)
	}
	if !s.LoggedIn() {
		return notice(c, http.StatusUnauthorized, "사용자 정보를 확인할 수 없습니다.")
	}
	if s, err = h.Sessions.Save(c.Response(), c.Request(), s); err != nil {
		c.Logger().Errorf("[auth] save token session: %v", err)
		return notice(c, http.StatusInternalServerError, noticeServerError)
	}
	middleware.SetSession(c, s)
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("%s님 환영합니다!", s.Identity.DisplayName()),
		"user_id": s.UserID(),
	})
}

// Logout clears every session value in one step and drops pooled seat
// controllers of the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	cur := middleware.CurrentSession(c)
	if err := h.Sessions.Clear(c.Response(), c.Request()); err != nil {
		c.Logger().Errorf("[auth] clear session: %v", err)
		return notice(c, http.StatusInternalServerError, noticeServerError)
	}
	if cur.ID != "" && h.Seats != nil {
		h.Seats.Forget(cur.ID)
	}
	middleware.SetSession(c, session.Session{})
	return c.JSON(http.StatusOK, echo.Map{"message": "로그아웃되었습니다."})
}
