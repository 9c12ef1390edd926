// Package reservation drives the "my reservations" page: listing a user's
// bookings and cancelling active ones.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/model"
	"github.com/iliyamo/matchday-seat-client/internal/session"
)

const (
	noticeEmpty     = "예매 내역이 없습니다."
	noticeCancelled = "예매가 취소되었습니다."
	noticeFailed    = "예매 취소 중 오류가 발생했습니다."
)

var (
	ErrLoginRequired  = errors.New("login required")
	ErrNotCancelable  = errors.New("reservation is not active")
	ErrNotConfirmed   = errors.New("cancellation was not confirmed")
	ErrCancelInFlight = errors.New("a cancellation for this reservation is already in flight")
)

// ReservationAPI is the part of the gateway client this page calls.
type ReservationAPI interface {
	ListMyReservations(ctx context.Context, userID uint64) ([]model.Reservation, error)
	CancelReservation(ctx context.Context, resID uint64) (model.CancelResult, error)
}

// Row is one rendered reservation.
type Row struct {
	model.Reservation
	SeatText   string `json:"seat_text"`
	MatchText  string `json:"match_text"`
	Cancelable bool   `json:"cancelable"`
}

// Listing is the rendered reservation history.
type Listing struct {
	Rows   []Row  `json:"rows"`
	Empty  bool   `json:"empty"`
	Notice string `json:"notice,omitempty"`
}

// CancelOutcome is the result of a cancellation that reached the backend.
type CancelOutcome struct {
	Cancelled bool    `json:"cancelled"`
	Notice    string  `json:"notice"`
	Listing   Listing `json:"listing"`
}

type Controller struct {
	sess session.Session
	api  ReservationAPI

	mu       sync.Mutex
	last     []model.Reservation
	loaded   bool
	inFlight map[uint64]bool
}

func NewController(sess session.Session, a ReservationAPI) *Controller {
	return &Controller{sess: sess, api: a, inFlight: map[uint64]bool{}}
}

// List fetches every reservation of the session's user, cancelled ones
// included.
func (c *Controller) List(ctx context.Context) (Listing, error) {
	if !c.sess.LoggedIn() {
		return Listing{}, ErrLoginRequired
	}
	rows, err := c.api.ListMyReservations(ctx, c.sess.UserID())
	if err != nil {
		return Listing{}, err
	}
	c.mu.Lock()
	c.last, c.loaded = rows, true
	c.mu.Unlock()
	return render(rows), nil
}

// Cancel cancels resID after the user confirmed it.  The reservation must be
// active in the last listing.  On success the list is fetched again; on a
// rejection the previous list is returned unchanged with the backend's
// message.
func (c *Controller) Cancel(ctx context.Context, resID uint64, confirmed bool) (CancelOutcome, error) {
	if !c.sess.LoggedIn() {
		return CancelOutcome{}, ErrLoginRequired
	}
	if !c.hasListing() {
		if _, err := c.List(ctx); err != nil {
			return CancelOutcome{}, err
		}
	}

	c.mu.Lock()
	r, ok := find(c.last, resID)
	if !ok || !r.Active() {
		c.mu.Unlock()
		return CancelOutcome{}, ErrNotCancelable
	}
	if !confirmed {
		c.mu.Unlock()
		return CancelOutcome{}, ErrNotConfirmed
	}
	if c.inFlight[resID] {
		c.mu.Unlock()
		return CancelOutcome{}, ErrCancelInFlight
	}
	c.inFlight[resID] = true
	previous := c.last
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, resID)
		c.mu.Unlock()
	}()

	res, err := c.api.CancelReservation(ctx, resID)
	if err != nil {
		if api.IsValidation(err) {
			return CancelOutcome{}, err
		}
		msg := api.Message(err)
		if msg == "" {
			msg = noticeFailed
		}
		return CancelOutcome{Notice: msg, Listing: render(previous)}, nil
	}

	notice := res.Message
	if notice == "" {
		notice = noticeCancelled
	}
	out := CancelOutcome{Cancelled: true, Notice: notice}
	listing, err := c.List(ctx)
	if err != nil {
		// the cancellation stands; only the refresh failed
		out.Listing = Listing{Notice: api.Message(err)}
		return out, nil
	}
	out.Listing = listing
	return out, nil
}

// ConfirmMessage is the question asked before cancelling resID.
func ConfirmMessage(resID uint64) string {
	return fmt.Sprintf("예매 번호 %d 를 정말 취소하시겠습니까?", resID)
}

func (c *Controller) hasListing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func find(rows []model.Reservation, id uint64) (model.Reservation, bool) {
	for _, r := range rows {
		if r.ID == id {
			return r, true
		}
	}
	return model.Reservation{}, false
}

func render(rows []model.Reservation) Listing {
	if len(rows) == 0 {
		return Listing{Rows: []Row{}, Empty: true, Notice: noticeEmpty}
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, Row{
			Reservation: r,
			SeatText:    r.SeatLabel(),
			MatchText:   r.MatchLabel(),
			Cancelable:  r.Active(),
		})
	}
	return Listing{Rows: out}
}
