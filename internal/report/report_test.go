package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/matchday-seat-client/internal/api"
	"github.com/iliyamo/matchday-seat-client/internal/model"
	"github.com/iliyamo/matchday-seat-client/internal/session"
)

type fakeAPI struct {
	stats   []model.MatchStats
	abuse   []model.AbuseCandidate
	history []model.CancellationRecord
	err     error
	filters []api.CancelHistoryFilter
	calls   int
}

func (f *fakeAPI) MatchStats(context.Context) ([]model.MatchStats, error) {
	f.calls++
	return f.stats, f.err
}

func (f *fakeAPI) AbuseCandidates(context.Context) ([]model.AbuseCandidate, error) {
	f.calls++
	return f.abuse, f.err
}

func (f *fakeAPI) CancelHistory(_ context.Context, flt api.CancelHistoryFilter) ([]model.CancellationRecord, error) {
	f.calls++
	f.filters = append(f.filters, flt)
	return f.history, f.err
}

func admin() session.Session {
	return session.Session{ID: "a"}.
		WithIdentity(model.Identity{UserID: 1, Name: "root", Role: model.RoleAdmin}).
		WithAdmin(1, "admin@example.com")
}

func TestReportsRequireAdmin(t *testing.T) {
	fa := &fakeAPI{}
	plain := session.Session{}.WithIdentity(model.Identity{UserID: 2, Role: model.RoleUser})
	c := NewController(plain, fa)

	_, err := c.MatchStats(context.Background())
	assert.ErrorIs(t, err, ErrAdminRequired)
	_, err = c.AbuseCandidates(context.Background())
	assert.ErrorIs(t, err, ErrAdminRequired)
	_, err = c.CancelHistory(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrAdminRequired)

	// role alone is not enough without the admin login flag
	roleOnly := session.Session{}.WithIdentity(model.Identity{UserID: 1, Role: model.RoleAdmin})
	_, err = NewController(roleOnly, fa).MatchStats(context.Background())
	assert.ErrorIs(t, err, ErrAdminRequired)
	assert.Zero(t, fa.calls)
}

func TestEmptyReportShowsEmptyState(t *testing.T) {
	v, err := NewController(admin(), &fakeAPI{}).MatchStats(context.Background())
	require.NoError(t, err)
	assert.True(t, v.Empty)
	assert.False(t, v.Failed)
	assert.Equal(t, noticeNoStats, v.Notice)
	assert.Empty(t, v.Rows)
}

func TestReportRows(t *testing.T) {
	resID := uint64(5)
	fa := &fakeAPI{abuse: []model.AbuseCandidate{{UserID: 4, ResID: &resID, CancelCount: 6}, {UserID: 2, CancelCount: 5}}}
	v, err := NewController(admin(), fa).AbuseCandidates(context.Background())
	require.NoError(t, err)
	assert.False(t, v.Empty)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, uint64(4), v.Rows[0].UserID)
	assert.Nil(t, v.Rows[1].ResID)
}

func TestReportFailure(t *testing.T) {
	fa := &fakeAPI{
		stats: []model.MatchStats{{MatchID: 1}},
		err:   &api.TransportError{Op: "match stats", Err: errors.New("timeout")},
	}
	v, err := NewController(admin(), fa).MatchStats(context.Background())
	require.NoError(t, err)
	assert.True(t, v.Failed)
	assert.Empty(t, v.Rows, "no stale rows after a failure")
	assert.NotEmpty(t, v.Notice)
}

func TestCancelHistoryFilter(t *testing.T) {
	fa := &fakeAPI{history: []model.CancellationRecord{{ID: 1, ResID: 3, UserID: 4}}}
	c := NewController(admin(), fa)

	_, err := c.CancelHistory(context.Background(), Filter{MatchID: 7})
	require.NoError(t, err)
	v, err := c.UserCancelHistory(context.Background(), Filter{UserID: 4, MatchID: 7})
	require.NoError(t, err)
	assert.Len(t, v.Rows, 1)
	assert.Equal(t, []api.CancelHistoryFilter{{MatchID: 7}, {UserID: 4, MatchID: 7}}, fa.filters)

	_, err = c.UserCancelHistory(context.Background(), Filter{UserID: 4})
	assert.ErrorIs(t, err, ErrFilterMissing)
	assert.Equal(t, 2, fa.calls)
}
