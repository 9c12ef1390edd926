package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptLogInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO client_attempt_log").
		WithArgs("e1", "sid-1", uint64(9), uint64(1), uint64(3), 0,
			"이미 예약된 좌석입니다.", nil, "10.0.0.1", nil, at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewAttemptLogRepo(db).Insert(context.Background(), AttemptLogEntry{
		EventID: "e1", SessionID: "sid-1",
		UserID: 9, MatchID: 1, SeatID: 3,
		FailReason:  "이미 예약된 좌석입니다.",
		IP:          "10.0.0.1",
		AttemptedAt: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptLogNeverTouchesRequestLog(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherFunc(
		func(_, actual string) error {
			if strings.Contains(strings.ToLower(actual), "request_log") {
				return errors.New("statement touches request_log")
			}
			return nil
		})))
	require.NoError(t, err)
	defer db.Close()

	repo := NewAttemptLogRepo(db)
	mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.Insert(context.Background(), AttemptLogEntry{
		EventID: "e2", UserID: 9, MatchID: 1, SeatID: 3, Success: true, ReservationID: 77,
		AttemptedAt: time.Now(),
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptLogEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS client_attempt_log").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewAttemptLogRepo(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
