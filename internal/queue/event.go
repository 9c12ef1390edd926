// Package queue defines the reserve-attempt event exchanged over the message
// broker and the consumer that persists it.
package queue

// ActionReserveAttempt is the only action the web client reports.
const ActionReserveAttempt = "reserve_attempt"

// ReserveAttemptEvent is published for every booking call the web client
// makes, successful or not.  It carries everything a client_attempt_log
// row needs, so the consumer never calls back into the web client.
type ReserveAttemptEvent struct {
	EventID       string `json:"event_id"`
	SessionID     string `json:"session_id,omitempty"`
	UserID        uint64 `json:"user_id"`
	MatchID       uint64 `json:"match_id"`
	SeatID        uint64 `json:"seat_id"`
	Action        string `json:"action"`
	Success       bool   `json:"success"`
	FailReason    string `json:"fail_reason,omitempty"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
	IP            string `json:"ip,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	AttemptedAt   string `json:"attempted_at"`
}
