// Package booking drives the seat page: it lists the seats of one match,
// re-orders them locally and turns a confirmed click into exactly one
// reservation call.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/model"
	"github.com/iliyamo/matchday-seat-client/internal/session"
)

const (
	DefaultMethod      = "card"
	DefaultLoginURL    = "/login"
	DefaultCompleteURL = "/complete"

	noticeLoginRequired = "로그인이 필요합니다. 로그인 페이지로 이동할까요?"
	noticeBooked        = "예매가 완료되었습니다!"
	noticeFailed        = "예매 실패"
)

var (
	ErrNotLoaded       = errors.New("seat list is not loaded")
	ErrSeatUnavailable = errors.New("seat is not available")
	ErrNotConfirmed    = errors.New("booking was not confirmed")
	ErrBookingInFlight = errors.New("a booking for this seat is already in flight")
)

// SeatAPI is the part of the gateway client the controller calls.
type SeatAPI interface {
	ListSeats(ctx context.Context, matchID uint64) ([]model.Seat, error)
	CreateReservation(ctx context.Context, req model.BookingRequest) (model.BookingResult, error)
}

// SeatView is one rendered seat.
type SeatView struct {
	model.Seat
	Label    string `json:"label"`
	Status   string `json:"status"`
	Bookable bool   `json:"bookable"`
}

// Prompt is the confirmation shown before a booking call.
type Prompt struct {
	MatchID uint64 `json:"match_id"`
	SeatID  uint64 `json:"seat_id"`
	Label   string `json:"label"`
	Price   int    `json:"price"`
	Message string `json:"message"`
}

// BookRequest is one click on a seat.
type BookRequest struct {
	SeatID    uint64
	Method    string
	Confirmed bool
	ClientIP  string
	UserAgent string
}

// Outcome tells the page what to do after a booking attempt.
type Outcome struct {
	State         State          `json:"state"`
	LoginRequired bool           `json:"login_required,omitempty"`
	LoginURL      string         `json:"login_url,omitempty"`
	Receipt       *model.Receipt `json:"receipt,omitempty"`
	Redirect      string         `json:"redirect,omitempty"`
	Notice        string         `json:"notice,omitempty"`
	Reconciled    bool           `json:"reconciled,omitempty"`
}

type Option func(*Controller)

func WithGuard(g Guard) Option { return func(c *Controller) { c.guard = g } }

func WithRecorder(r AttemptRecorder) Option { return func(c *Controller) { c.recorder = r } }

func WithPaymentMethod(m string) Option {
	return func(c *Controller) {
		if strings.TrimSpace(m) != "" {
			c.method = m
		}
	}
}

func WithPages(loginURL, completeURL string) Option {
	return func(c *Controller) {
		if loginURL != "" {
			c.loginURL = loginURL
		}
		if completeURL != "" {
			c.completeURL = completeURL
		}
	}
}

// Controller holds the seat snapshot of one match for one session.  It is
// safe for concurrent use; the network calls happen outside the lock.
type Controller struct {
	matchID     uint64
	api         SeatAPI
	guard       Guard
	recorder    AttemptRecorder
	method      string
	loginURL    string
	completeURL string

	mu       sync.Mutex
	sess     session.Session
	state    State
	seats    []model.Seat
	inFlight map[uint64]bool
}

func NewController(matchID uint64, sess session.Session, seatAPI SeatAPI, opts ...Option) *Controller {
	c := &Controller{
		matchID:     matchID,
		api:         seatAPI,
		guard:       NewMemoryGuard(),
		recorder:    nopRecorder{},
		method:      DefaultMethod,
		loginURL:    DefaultLoginURL,
		completeURL: DefaultCompleteURL,
		sess:        sess,
		state:       Loading,
		inFlight:    map[uint64]bool{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) MatchID() uint64 { return c.matchID }

// State returns the current position in the booking cycle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loaded reports whether a seat snapshot is available.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seats != nil
}

// Bind replaces the session the controller acts for, e.g. after a login in
// another tab.
func (c *Controller) Bind(sess session.Session) {
	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()
}

// Load fetches the seat list.  On failure the controller is left in Loading
// with no snapshot.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = Loading
	c.mu.Unlock()

	seats, err := c.api.ListSeats(ctx, c.matchID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.seats = nil
		return err
	}
	if seats == nil {
		seats = []model.Seat{}
	}
	c.seats = seats
	c.state = Listed
	return nil
}

// View renders the snapshot in the requested order.  It never calls the
// backend.
func (c *Controller) View(mode SortMode) ([]SeatView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seats == nil {
		return nil, ErrNotLoaded
	}
	sorted := SortSeats(c.seats, mode)
	out := make([]SeatView, 0, len(sorted))
	for _, s := range sorted {
		v := SeatView{Seat: s, Label: s.Label(), Status: "available", Bookable: true}
		switch {
		case s.IsReserved:
			v.Status, v.Bookable = "reserved", false
		case c.inFlight[s.ID]:
			v.Status, v.Bookable = "booking", false
		}
		out = append(out, v)
	}
	return out, nil
}

// Prompt builds the confirmation step for seatID.
func (c *Controller) Prompt(seatID uint64) (Prompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seat, err := c.bookableLocked(seatID)
	if err != nil {
		return Prompt{}, err
	}
	label := seat.Label()
	return Prompt{
		MatchID: c.matchID,
		SeatID:  seat.ID,
		Label:   label,
		Price:   seat.Price,
		Message: fmt.Sprintf("%s 좌석을 예매하시겠습니까? 가격: %d원", label, seat.Price),
	}, nil
}

func (c *Controller) bookableLocked(seatID uint64) (model.Seat, error) {
	if c.seats == nil {
		return model.Seat{}, ErrNotLoaded
	}
	for _, s := range c.seats {
		if s.ID != seatID {
			continue
		}
		if s.IsReserved {
			return model.Seat{}, ErrSeatUnavailable
		}
		if c.inFlight[s.ID] {
			return model.Seat{}, ErrBookingInFlight
		}
		return s, nil
	}
	return model.Seat{}, ErrSeatUnavailable
}

// Book runs one booking attempt.  Without an identity it only asks the page
// to send the user to login.  Errors are returned for attempts that never
// reached the backend; backend outcomes are reported in Outcome.
func (c *Controller) Book(ctx context.Context, req BookRequest) (Outcome, error) {
	c.mu.Lock()
	sess := c.sess
	if !sess.LoggedIn() {
		st := c.state
		c.mu.Unlock()
		return Outcome{State: st, LoginRequired: true, LoginURL: c.loginURL, Notice: noticeLoginRequired}, nil
	}
	seat, err := c.bookableLocked(req.SeatID)
	c.mu.Unlock()
	if err != nil {
		return Outcome{}, err
	}
	if !req.Confirmed {
		return Outcome{}, ErrNotConfirmed
	}

	// the guard may be a network call; the controller stays readable meanwhile
	key := guardKey(sess.ID, c.matchID, seat.ID)
	token, ok, err := c.guard.Acquire(ctx, key)
	if err != nil {
		return Outcome{}, fmt.Errorf("acquire booking guard: %w", err)
	}
	if !ok {
		return Outcome{}, ErrBookingInFlight
	}

	c.mu.Lock()
	if seat, err = c.bookableLocked(req.SeatID); err != nil {
		c.mu.Unlock()
		_ = c.guard.Release(context.WithoutCancel(ctx), key, token)
		return Outcome{}, err
	}
	c.inFlight[seat.ID] = true
	c.state = BookingInFlight
	c.mu.Unlock()

	defer func() {
		// a cancelled request context must not leave the key behind
		_ = c.guard.Release(context.WithoutCancel(ctx), key, token)
		c.mu.Lock()
		delete(c.inFlight, seat.ID)
		c.mu.Unlock()
	}()

	method := req.Method
	if strings.TrimSpace(method) == "" {
		method = c.method
	}
	res, err := c.api.CreateReservation(ctx, model.BookingRequest{
		UserID:  sess.UserID(),
		MatchID: c.matchID,
		SeatID:  seat.ID,
		Amount:  seat.Price,
		Method:  method,
	})

	attempt := Attempt{
		SessionID: sess.ID,
		UserID:    sess.UserID(),
		MatchID:   c.matchID,
		SeatID:    seat.ID,
		ClientIP:  req.ClientIP,
		UserAgent: req.UserAgent,
	}

	switch {
	case err == nil:
		attempt.Success = true
		attempt.ReservationID = res.ReservationID
		c.recorder.RecordAttempt(ctx, attempt)
		return c.succeeded(seat, res), nil

	case api.IsRejection(err):
		attempt.Reason = api.Message(err)
		c.recorder.RecordAttempt(ctx, attempt)
		return c.rejected(ctx, api.Message(err)), nil

	case api.IsValidation(err):
		c.backToListed()
		return Outcome{}, err

	default:
		attempt.Reason = api.Message(err)
		c.recorder.RecordAttempt(ctx, attempt)
		c.backToListed()
		return Outcome{State: Listed, Notice: api.Message(err)}, nil
	}
}

func (c *Controller) succeeded(seat model.Seat, res model.BookingResult) Outcome {
	c.mu.Lock()
	for i := range c.seats {
		if c.seats[i].ID == seat.ID {
			c.seats[i].IsReserved = true
		}
	}
	c.state = BookingSucceeded
	c.mu.Unlock()

	rc := model.Receipt{
		ReservationID: res.ReservationID,
		MatchID:       c.matchID,
		SeatLabel:     seat.Label(),
		Price:         seat.Price,
	}
	notice := res.Message
	if notice == "" {
		notice = noticeBooked
	}
	return Outcome{
		State:    BookingSucceeded,
		Receipt:  &rc,
		Redirect: c.completeURL + "?" + rc.Query().Encode(),
		Notice:   notice,
	}
}

// rejected surfaces the backend's message and re-fetches the seat list, so
// the page shows the backend's view of the seat rather than the stale one.
func (c *Controller) rejected(ctx context.Context, msg string) Outcome {
	if msg == "" {
		msg = noticeFailed
	}
	c.mu.Lock()
	c.state = BookingRejected
	c.mu.Unlock()

	out := Outcome{State: BookingRejected, Notice: msg}
	if err := c.Load(ctx); err == nil {
		out.State = Listed
		out.Reconciled = true
	} else {
		out.State = Loading
	}
	return out
}

func (c *Controller) backToListed() {
	c.mu.Lock()
	if c.seats != nil {
		c.state = Listed
	}
	c.mu.Unlock()
}

func guardKey(sessionID string, matchID, seatID uint64) string {
	if sessionID == "" {
		sessionID = "anonymous"
	}
	return fmt.Sprintf("%s:%d:%d", sessionID, matchID, seatID)
}
