package booking

import "context"

// Attempt describes one booking call, successful or not.
type Attempt struct {
	SessionID     string
	UserID        uint64
	MatchID       uint64
	SeatID        uint64
	Success       bool
	Reason        string
	ReservationID uint64
	ClientIP      string
	UserAgent     string
}

// AttemptRecorder receives every booking attempt that reached the backend.
// Recording must not fail the booking; implementations log their own errors.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a Attempt)
}

type nopRecorder struct{}

func (nopRecorder) RecordAttempt(context.Context, Attempt) {}
