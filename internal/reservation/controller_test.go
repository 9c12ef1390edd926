package reservation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/model"
	"github.com/iliyamo/matchday-seat-client/internal/session"
)

type fakeAPI struct {
	mu         sync.Mutex
	lists      [][]model.Reservation
	listN      int
	cancelRes  model.CancelResult
	cancelErr  error
	cancelled  []uint64
	listUserID uint64
}

func (f *fakeAPI) ListMyReservations(_ context.Context, userID uint64) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listUserID = userID
	f.listN++
	i := f.listN - 1
	if i >= len(f.lists) {
		i = len(f.lists) - 1
	}
	return f.lists[i], nil
}

func (f *fakeAPI) CancelReservation(_ context.Context, resID uint64) (model.CancelResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, resID)
	return f.cancelRes, f.cancelErr
}

func user() session.Session {
	return session.Session{ID: "s"}.WithIdentity(model.Identity{UserID: 3, Name: "lee", Role: model.RoleUser})
}

func res(id uint64, status string) model.Reservation {
	return model.Reservation{ID: id, Status: status, Block: "B", RowNo: "2", SeatNumber: "7", Grade: "S", Price: 30000}
}

func TestListRequiresLogin(t *testing.T) {
	fa := &fakeAPI{lists: [][]model.Reservation{{}}}
	_, err := NewController(session.Session{}, fa).List(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Zero(t, fa.listN)
}

func TestListIncludesCancelled(t *testing.T) {
	fa := &fakeAPI{lists: [][]model.Reservation{{res(1, model.StatusActive), res(2, model.StatusCancelled)}}}
	l, err := NewController(user(), fa).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), fa.listUserID)
	require.Len(t, l.Rows, 2)
	assert.True(t, l.Rows[0].Cancelable)
	assert.False(t, l.Rows[1].Cancelable)
	assert.Equal(t, "B블록 2열 7번 (S)", l.Rows[0].SeatText)
	assert.False(t, l.Empty)
}

func TestListEmpty(t *testing.T) {
	fa := &fakeAPI{lists: [][]model.Reservation{nil}}
	l, err := NewController(user(), fa).List(context.Background())
	require.NoError(t, err)
	assert.True(t, l.Empty)
	assert.Equal(t, noticeEmpty, l.Notice)
}

func TestCancelRefetchesOnSuccess(t *testing.T) {
	fa := &fakeAPI{
		lists:     [][]model.Reservation{{res(1, model.StatusActive)}, {res(1, model.StatusCancelled)}},
		cancelRes: model.CancelResult{Message: "예매가 취소되었습니다.", ReservationID: 1, Status: model.StatusCancelled},
	}
	c := NewController(user(), fa)
	_, err := c.List(context.Background())
	require.NoError(t, err)

	out, err := c.Cancel(context.Background(), 1, true)
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.Equal(t, []uint64{1}, fa.cancelled)
	assert.Equal(t, 2, fa.listN)
	require.Len(t, out.Listing.Rows, 1)
	assert.False(t, out.Listing.Rows[0].Cancelable)
}

func TestCancelRejectionKeepsList(t *testing.T) {
	fa := &fakeAPI{
		lists:     [][]model.Reservation{{res(1, model.StatusActive)}},
		cancelErr: &api.RejectionError{Status: 400, Message: "이미 취소된 예약입니다."},
	}
	c := NewController(user(), fa)
	_, err := c.List(context.Background())
	require.NoError(t, err)

	out, err := c.Cancel(context.Background(), 1, true)
	require.NoError(t, err)
	assert.False(t, out.Cancelled)
	assert.Equal(t, "이미 취소된 예약입니다.", out.Notice)
	require.Len(t, out.Listing.Rows, 1)
	assert.True(t, out.Listing.Rows[0].Cancelable)
	assert.Equal(t, 1, fa.listN, "a rejection must not refetch")
}

func TestCancelPreconditions(t *testing.T) {
	fa := &fakeAPI{lists: [][]model.Reservation{{res(1, model.StatusActive), res(2, model.StatusCancelled)}}}
	c := NewController(user(), fa)

	_, err := c.Cancel(context.Background(), 2, true)
	assert.ErrorIs(t, err, ErrNotCancelable)
	_, err = c.Cancel(context.Background(), 9, true)
	assert.ErrorIs(t, err, ErrNotCancelable)
	_, err = c.Cancel(context.Background(), 1, false)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, fa.cancelled)
	assert.Equal(t, 1, fa.listN, "the listing is fetched once on demand")

	_, err = NewController(session.Session{}, fa).Cancel(context.Background(), 1, true)
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestCancelSingleInFlight(t *testing.T) {
	fa := &fakeAPI{lists: [][]model.Reservation{{res(1, model.StatusActive)}}}
	c := NewController(user(), fa)
	_, err := c.List(context.Background())
	require.NoError(t, err)

	c.inFlight[1] = true
	_, err = c.Cancel(context.Background(), 1, true)
	assert.ErrorIs(t, err, ErrCancelInFlight)
	assert.Empty(t, fa.cancelled)
}

func TestConfirmMessage(t *testing.T) {
	assert.Equal(t, "예매 번호 12 를 정말 취소하시겠습니까?", ConfirmMessage(12))
}
