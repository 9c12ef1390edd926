package repository

import (
	"context"
	"database/sql"
	"time"
)

// AttemptLogSchema creates the table this client owns.  The booking
// backend keeps its own request_log; the two are never written by the same
// party.
const AttemptLogSchema = `CREATE TABLE IF NOT EXISTS client_attempt_log (
	id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	event_id       CHAR(36)        NOT NULL,
	session_id     VARCHAR(64)     NULL,
	user_id        BIGINT UNSIGNED NOT NULL,
	match_id       BIGINT UNSIGNED NOT NULL,
	seat_id        BIGINT UNSIGNED NOT NULL,
	success        TINYINT(1)      NOT NULL,
	fail_reason    VARCHAR(255)    NULL,
	reservation_id BIGINT UNSIGNED NULL,
	ip             VARCHAR(45)     NULL,
	user_agent     VARCHAR(255)    NULL,
	attempted_at   DATETIME(3)     NOT NULL,
	UNIQUE KEY uq_client_attempt_event (event_id),
	KEY idx_client_attempt_match (match_id, attempted_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// AttemptLogEntry is one row of client_attempt_log.
type AttemptLogEntry struct {
	EventID       string
	SessionID     string
	UserID        uint64
	MatchID       uint64
	SeatID        uint64
	Success       bool
	FailReason    string
	ReservationID uint64
	IP            string
	UserAgent     string
	AttemptedAt   time.Time
}

type AttemptLogRepo struct{ DB *sql.DB }

func NewAttemptLogRepo(db *sql.DB) *AttemptLogRepo { return &AttemptLogRepo{DB: db} }

// EnsureSchema creates client_attempt_log when it is missing.
func (r *AttemptLogRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, AttemptLogSchema)
	return err
}

// Insert appends one entry.  A redelivered event (same event_id) is a no-op.
// Empty strings and a zero reservation id are stored as NULL.
func (r *AttemptLogRepo) Insert(ctx context.Context, e AttemptLogEntry) error {
	success := 0
	if e.Success {
		success = 1
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO client_attempt_log
			(event_id, session_id, user_id, match_id, seat_id, success, fail_reason, reservation_id, ip, user_agent, attempted_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE event_id = event_id`,
		e.EventID, nullString(e.SessionID), e.UserID, e.MatchID, e.SeatID, success,
		nullString(e.FailReason), nullUint(e.ReservationID),
		nullString(e.IP), nullString(e.UserAgent), e.AttemptedAt.UTC())
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUint(n uint64) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
