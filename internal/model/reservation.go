package model

// Reservation statuses.  The only transition is active → cancelled.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Reservation is one row of a user's booking history as returned by
// /api/my/reservations/.  The backend joins match, seat and payment data
// into a flat record; timestamps are kept in the backend's format because
// they are only displayed.
type Reservation struct {
	ID         uint64  `json:"res_id"`
	UserID     uint64  `json:"user_id,omitempty"`
	ResDate    string  `json:"res_date"`
	Status     string  `json:"status"`
	MatchID    uint64  `json:"match_id"`
	MatchDate  string  `json:"match_date"`
	Stadium    string  `json:"stadium"`
	HomeTeam   string  `json:"home_team"`
	AwayTeam   string  `json:"away_team"`
	SeatID     uint64  `json:"seat_id"`
	Block      string  `json:"block"`
	RowNo      string  `json:"row_no"`
	SeatNumber string  `json:"seat_number"`
	Grade      string  `json:"grade"`
	Price      int     `json:"price"`
	PayID      *uint64 `json:"pay_id"`
	Amount     *int    `json:"amount"`
	Method     *string `json:"method"`
	PayDate    *string `json:"pay_date"`
}

// Active reports whether the reservation can still be cancelled.
func (r Reservation) Active() bool { return r.Status == StatusActive }

// SeatLabel is the seat's label including its grade.
func (r Reservation) SeatLabel() string {
	return SeatLabel(r.Block, r.RowNo, r.SeatNumber) + " (" + r.Grade + ")"
}

// MatchLabel summarises the match the reservation belongs to.
func (r Reservation) MatchLabel() string {
	return r.MatchDate + " / " + r.Stadium + " / " + r.HomeTeam + " vs " + r.AwayTeam
}

// BookingRequest is the body of POST /api/reservations/.  All fields are
// required by the backend.
type BookingRequest struct {
	UserID  uint64 `json:"user_id"`
	MatchID uint64 `json:"match_id"`
	SeatID  uint64 `json:"seat_id"`
	Amount  int    `json:"amount"`
	Method  string `json:"method"`
}

// BookingResult is the backend's answer to a successful booking.
type BookingResult struct {
	Message       string `json:"message"`
	ReservationID uint64 `json:"reservation_id"`
}

// CancelResult is the backend's answer to a successful cancellation.
type CancelResult struct {
	Message       string `json:"message"`
	ReservationID uint64 `json:"res_id"`
	Status        string `json:"status"`
}

// CancellationRecord is an append-only entry of the cancellation ledger.
// The joined match and seat fields are only present on filtered queries.
type CancellationRecord struct {
	ID         uint64  `json:"cancel_id"`
	ResID      uint64  `json:"res_id"`
	UserID     uint64  `json:"user_id"`
	CancelDate string  `json:"cancel_date"`
	Reason     *string `json:"reason"`

	MatchDate  string `json:"match_date,omitempty"`
	Stadium    string `json:"stadium,omitempty"`
	Block      string `json:"block,omitempty"`
	RowNo      string `json:"row_no,omitempty"`
	SeatNumber string `json:"seat_number,omitempty"`
	Grade      string `json:"grade,omitempty"`
	Price      *int   `json:"price,omitempty"`
	ResDate    string `json:"res_date,omitempty"`
	Status     string `json:"status,omitempty"`
}
