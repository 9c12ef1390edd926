package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/booking"
	"github.com/iliyamo/matchday-seat-client/internal/config"
	"github.com/iliyamo/matchday-seat-client/internal/handler"
	"github.com/iliyamo/matchday-seat-client/internal/middleware"
	"github.com/iliyamo/matchday-seat-client/internal/model"
	"github.com/iliyamo/matchday-seat-client/internal/router"
	"github.com/iliyamo/matchday-seat-client/internal/session"
)

// backend fakes the stadium booking REST API.
type backend struct {
	mu          sync.Mutex
	seatTaken   bool
	cancelled   bool
	bookings    int
	seatFetches int
	stats       string
	userinfo    int
	myAuth      string
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, `{"user_id": 9, "name": "kim", "email": "kim@example.com", "is_new": false}`)
	})
	mux.HandleFunc("/api/admin/login/", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["email"] != "admin@example.com" {
			write(w, 401, `{"error": "관리자 계정을 찾을 수 없습니다."}`)
			return
		}
		write(w, 200, `{"user_id": 1, "name": "root", "email": "admin@example.com", "role": "admin"}`)
	})
	mux.HandleFunc("/api/users/userinfo/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.userinfo++
		b.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			write(w, 401, `{"detail": "invalid token"}`)
			return
		}
		write(w, 200, `{"id": 12, "username": "lee", "role": "USER"}`)
	})
	mux.HandleFunc("/api/matches/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/matches/1/seats/" {
			b.mu.Lock()
			b.seatFetches++
			taken := b.seatTaken
			b.mu.Unlock()
			write(w, 200, `[
				{"seat_id": 1, "block": "A", "row_no": "1", "seat_number": "1", "grade": "R", "price": 50000, "is_reserved": `+boolJSON(taken)+`},
				{"seat_id": 2, "block": "A", "row_no": "1", "seat_number": "2", "grade": "S", "price": 30000, "is_reserved": false}
			]`)
			return
		}
		write(w, 200, `[{"match_id": 1, "match_date": "2026-05-01 18:30", "stadium": "잠실", "total_seats": 100, "home_team": "LG", "away_team": "두산"}]`)
	})
	mux.HandleFunc("/api/reservations/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if strings.HasSuffix(r.URL.Path, "/cancel/") {
			if b.cancelled {
				write(w, 400, `{"error": "이미 취소된 예약입니다."}`)
				return
			}
			b.cancelled = true
			write(w, 200, `{"message": "예매가 취소되었습니다.", "res_id": 5, "status": "cancelled"}`)
			return
		}
		b.bookings++
		if b.seatTaken {
			write(w, 400, `{"error": "이미 예약된 좌석입니다."}`)
			return
		}
		b.seatTaken = true
		write(w, 201, `{"message": "예매 성공", "reservation_id": 77}`)
	})
	mux.HandleFunc("/api/my/reservations/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.myAuth = r.Header.Get("Authorization")
		status := "active"
		if b.cancelled {
			status = "cancelled"
		}
		b.mu.Unlock()
		write(w, 200, `[{"res_id": 5, "status": "`+status+`", "match_id": 1, "seat_id": 1, "block": "A", "row_no": "1", "seat_number": "1", "grade": "R", "price": 50000}]`)
	})
	mux.HandleFunc("/api/admin/match-stats/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		body := b.stats
		if body == "" {
			body = "[]"
		}
		write(w, 200, body)
	})
	mux.HandleFunc("/api/admin/cancel-history/", func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, `[{"cancel_id": 1, "res_id": 5, "user_id": `+r.URL.Query().Get("user_id")+`, "cancel_date": "2026-05-02", "reason": null}]`)
	})
	return mux
}

func (b *backend) counts() (bookings, seatFetches int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bookings, b.seatFetches
}

func (b *backend) tokenUse() (userinfo int, myAuth string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.userinfo, b.myAuth
}

var validToken = signedToken(time.Now().Add(time.Hour))

func signedToken(exp time.Time) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 12, "exp": exp.Unix()}).
		SignedString([]byte("backend-secret"))
	if err != nil {
		panic(err)
	}
	return tok
}

func boolJSON(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func newServer(t *testing.T, b *backend) *echo.Echo {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	sessions := session.NewAccessor(session.NewCookieStore("handler-test-secret", time.Hour, false), "sid", session.NewMemoryBackend(), time.Hour)
	guard := booking.NewMemoryGuard()
	seats := booking.NewPool(time.Minute, func(matchID uint64, s session.Session) *booking.Controller {
		return booking.NewController(matchID, s, client, booking.WithGuard(guard), booking.WithPages(router.LoginPage, router.CompletePage))
	})

	e := echo.New()
	e.Use(middleware.LoadSession(sessions, func(ctx context.Context, token string) (model.Identity, error) {
		return client.WithToken(token).UserInfo(ctx)
	}))
	noop := middleware.NewTokenBucket(config.RateLimitConfig{}, nil)
	router.RegisterRoutes(e, handler.NewHealthHandler(nil))
	router.RegisterAuth(e, handler.NewAuthHandler(client, sessions, seats), noop)
	router.RegisterBooking(e, handler.NewMatchHandler(client), handler.NewSeatHandler(seats), handler.NewCompleteHandler("http://localhost:8080"), noop, noop)
	router.RegisterMyPage(e, handler.NewMyPageHandler(client), middleware.RequireLogin(router.LoginPage), noop)
	router.RegisterAdmin(e, handler.NewAdminHandler(client), middleware.RequireAdmin(router.AdminLoginPage))
	return e
}

// browser keeps the cookies the server sets across requests.
type browser struct {
	e       *echo.Echo
	cookies map[string]*http.Cookie
}

func newBrowser(e *echo.Echo) *browser { return &browser{e: e, cookies: map[string]*http.Cookie{}} }

func (b *browser) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	rec := newBrowser(newServer(t, &backend{})).do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "disabled", decode(t, rec)["redis"])
}

func TestHeaderFollowsLogin(t *testing.T) {
	br := newBrowser(newServer(t, &backend{}))

	h := decode(t, br.do(http.MethodGet, "/api/header", ""))
	assert.Equal(t, false, h["logged_in"])
	assert.Equal(t, true, h["show_login"])

	rec := br.do(http.MethodPost, "/api/login", `{"name": "kim", "email": "kim@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "kim님 로그인 완료! (user_id=9)", decode(t, rec)["message"])

	h = decode(t, br.do(http.MethodGet, "/api/header", ""))
	assert.Equal(t, "kim님 환영합니다!", h["greeting"])
	assert.Equal(t, true, h["show_mypage"])
	assert.Equal(t, false, h["show_admin"])

	assert.Equal(t, http.StatusOK, br.do(http.MethodPost, "/api/logout", "").Code)
	h = decode(t, br.do(http.MethodGet, "/api/header", ""))
	assert.Equal(t, false, h["logged_in"])
}

func TestLoginValidation(t *testing.T) {
	rec := newBrowser(newServer(t, &backend{})).do(http.MethodPost, "/api/login", `{"name": "", "email": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "이름과 이메일을 입력해주세요.", decode(t, rec)["error"])
}

func TestSeatsSortAndBookingFlow(t *testing.T) {
	be := &backend{}
	br := newBrowser(newServer(t, be))

	rec := br.do(http.MethodGet, "/api/matches/1/seats?sort=price_asc", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	seats := decode(t, rec)["seats"].([]any)
	require.Len(t, seats, 2)
	assert.EqualValues(t, 2, seats[0].(map[string]any)["seat_id"])

	// guests get a login prompt and no backend call
	rec = br.do(http.MethodPost, "/api/matches/1/seats/1/book", `{"confirmed": true}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, router.LoginPage, decode(t, rec)["login_url"])
	booked, _ := be.counts()
	assert.Zero(t, booked)

	require.Equal(t, http.StatusOK, br.do(http.MethodPost, "/api/login", `{"name": "kim", "email": "kim@example.com"}`).Code)

	rec = br.do(http.MethodGet, "/api/matches/1/seats/1/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decode(t, rec)["message"], "A블록 1열 1번")

	rec = br.do(http.MethodPost, "/api/matches/1/seats/1/book", `{"confirmed": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "booking_succeeded", out["state"])
	assert.Contains(t, out["redirect"], "res_id=77")

	rec = br.do(http.MethodGet, "/api/matches/1/seats", "")
	first := decode(t, rec)["seats"].([]any)[0].(map[string]any)
	assert.Equal(t, false, first["bookable"])

	rec = br.do(http.MethodPost, "/api/matches/1/seats/1/book", `{"confirmed": true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	booked, _ = be.counts()
	assert.Equal(t, 1, booked)
}

func TestBookingRejectionReconciles(t *testing.T) {
	be := &backend{}
	br := newBrowser(newServer(t, be))
	require.Equal(t, http.StatusOK, br.do(http.MethodPost, "/api/login", `{"name": "kim", "email": "kim@example.com"}`).Code)
	require.Equal(t, http.StatusOK, br.do(http.MethodGet, "/api/matches/1/seats", "").Code)

	be.mu.Lock()
	be.seatTaken = true // someone else booked seat 1 after our fetch
	be.mu.Unlock()

	rec := br.do(http.MethodPost, "/api/matches/1/seats/1/book", `{"confirmed": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "이미 예약된 좌석입니다.", out["notice"])
	assert.Nil(t, out["redirect"])
	assert.Equal(t, true, out["reconciled"])
	_, fetches := be.counts()
	assert.Equal(t, 2, fetches)

	first := decode(t, br.do(http.MethodGet, "/api/matches/1/seats", ""))["seats"].([]any)[0].(map[string]any)
	assert.Equal(t, false, first["bookable"])
}

func TestCompleteAndReceipt(t *testing.T) {
	br := newBrowser(newServer(t, &backend{}))
	q := "res_id=77&match_id=1&seat_label=A%EB%B8%94%EB%A1%9D+1%EC%97%B4+1%EB%B2%88&price=50000"

	rec := br.do(http.MethodGet, "/api/complete?"+q, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "예매가 완료되었습니다! (예약번호: 77) 경기 ID: 1, 좌석: A블록 1열 1번, 가격: 50000원", decode(t, rec)["message"])

	rec = br.do(http.MethodGet, "/api/complete/receipt.pdf?"+q, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	assert.Equal(t, http.StatusBadRequest, br.do(http.MethodGet, "/api/complete?price=1", "").Code)
}

func TestMyPageCancel(t *testing.T) {
	br := newBrowser(newServer(t, &backend{}))
	assert.Equal(t, http.StatusUnauthorized, br.do(http.MethodGet, "/api/mypage/reservations", "").Code)

	require.Equal(t, http.StatusOK, br.do(http.MethodPost, "/api/login", `{"name": "kim", "email": "kim@example.com"}`).Code)
	rec := br.do(http.MethodGet, "/api/mypage/reservations", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rows := decode(t, rec)["listing"].(map[string]any)["rows"].([]any)
	assert.Equal(t, true, rows[0].(map[string]any)["cancelable"])

	rec = br.do(http.MethodPost, "/api/mypage/reservations/5/cancel", `{}`)
	assert.Equal(t, "예매 번호 5 를 정말 취소하시겠습니까?", decode(t, rec)["confirm"])

	rec = br.do(http.MethodPost, "/api/mypage/reservations/5/cancel", `{"confirmed": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, true, out["cancelled"])
	rows = out["listing"].(map[string]any)["rows"].([]any)
	assert.Equal(t, "cancelled", rows[0].(map[string]any)["status"])

	rec = br.do(http.MethodPost, "/api/mypage/reservations/5/cancel", `{"confirmed": true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminReports(t *testing.T) {
	be := &backend{}
	br := newBrowser(newServer(t, be))
	assert.Equal(t, http.StatusForbidden, br.do(http.MethodGet, "/api/admin/match-stats", "").Code)

	rec := br.do(http.MethodPost, "/api/admin/login", `{"email": "nobody@example.com"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "관리자 계정을 찾을 수 없습니다.", decode(t, rec)["error"])

	require.Equal(t, http.StatusOK, br.do(http.MethodPost, "/api/admin/login", `{"email": "admin@example.com"}`).Code)

	v := decode(t, br.do(http.MethodGet, "/api/admin/match-stats", ""))
	assert.Equal(t, true, v["empty"])
	assert.Equal(t, false, v["failed"])

	be.mu.Lock()
	be.stats = `[{"match_id": 1, "match_date": "2026-05-01", "stadium": "잠실", "total_seats": 100, "seat_count": 100, "reserved_seats": 40, "occupancy_rate": 40.0, "total_sales": 2000000, "reservation_count": 40}]`
	be.mu.Unlock()
	v = decode(t, br.do(http.MethodGet, "/api/admin/match-stats", ""))
	assert.Len(t, v["rows"], 1)

	assert.Equal(t, http.StatusBadRequest, br.do(http.MethodGet, "/api/admin/cancel-history/detail?user_id=4", "").Code)
	rec = br.do(http.MethodGet, "/api/admin/cancel-history/detail?user_id=4&match_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "사용자 4, 경기 1 취소 이력", decode(t, rec)["title"])
}

func TestGuestSortChangesReuseSnapshot(t *testing.T) {
	be := &backend{}
	br := newBrowser(newServer(t, be))

	orders := map[string]uint64{"default": 1, "price_asc": 2, "price_desc": 1}
	for _, mode := range []string{"default", "price_asc", "price_desc", "price_asc"} {
		rec := br.do(http.MethodGet, "/api/matches/1/seats?sort="+mode, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		first := decode(t, rec)["seats"].([]any)[0].(map[string]any)
		assert.EqualValues(t, orders[mode], first["seat_id"], mode)
	}
	_, fetches := be.counts()
	assert.Equal(t, 1, fetches, "re-sorting only re-renders the snapshot")

	require.Equal(t, http.StatusOK, br.do(http.MethodGet, "/api/matches/1/seats?refresh=1", "").Code)
	_, fetches = be.counts()
	assert.Equal(t, 2, fetches)
}

func TestSessionTokenHandOver(t *testing.T) {
	be := &backend{}
	br := newBrowser(newServer(t, be))

	rec := br.do(http.MethodPost, "/api/session/token", `{"access": "`+validToken+`", "refresh": "r-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "lee님 환영합니다!", decode(t, rec)["message"])

	h := decode(t, br.do(http.MethodGet, "/api/header", ""))
	assert.Equal(t, true, h["logged_in"])
	assert.EqualValues(t, 12, h["user_id"])
	assert.Equal(t, "user", h["role"])

	require.Equal(t, http.StatusOK, br.do(http.MethodGet, "/api/mypage/reservations", "").Code)
	calls, auth := be.tokenUse()
	assert.Equal(t, 1, calls, "the identity is stored, userinfo is not asked again")
	assert.Equal(t, "Bearer "+validToken, auth)
}

func TestSessionTokenRejected(t *testing.T) {
	be := &backend{}
	br := newBrowser(newServer(t, be))

	rec := br.do(http.MethodPost, "/api/session/token", `{"access": "`+signedToken(time.Now().Add(-time.Minute))+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	calls, _ := be.tokenUse()
	assert.Zero(t, calls, "an expired token is never sent")

	rec = br.do(http.MethodPost, "/api/session/token", `{"access": "not-a-valid-token"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decode(t, br.do(http.MethodGet, "/api/header", ""))["logged_in"])

	assert.Equal(t, http.StatusBadRequest, br.do(http.MethodPost, "/api/session/token", `{}`).Code)
}
