package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/matchday-seat-client/internal/model"
)

// CancelHistoryFilter narrows the cancellation ledger.  Zero values are
// omitted from the query.
type CancelHistoryFilter struct {
	UserID  uint64
	MatchID uint64
}

func (f CancelHistoryFilter) query() url.Values {
	q := url.Values{}
	if f.UserID != 0 {
		q.Set("user_id", strconv.FormatUint(f.UserID, 10))
	}
	if f.MatchID != 0 {
		q.Set("match_id", strconv.FormatUint(f.MatchID, 10))
	}
	return q
}

// MatchStats calls GET /api/admin/match-stats/.
func (c *Client) MatchStats(ctx context.Context) ([]model.MatchStats, error) {
	var out []model.MatchStats
	err := c.do(ctx, "match stats", http.MethodGet, "/api/admin/match-stats/", nil, nil, &out, "경기 통계를 불러오지 못했습니다.")
	return out, err
}

// AbuseCandidates calls GET /api/admin/abuse/.
func (c *Client) AbuseCandidates(ctx context.Context) ([]model.AbuseCandidate, error) {
	var out []model.AbuseCandidate
	err := c.do(ctx, "abuse candidates", http.MethodGet, "/api/admin/abuse/", nil, nil, &out, "이상 예매 목록을 불러오지 못했습니다.")
	return out, err
}

// CancelHistory calls GET /api/admin/cancel-history/ with optional filters.
func (c *Client) CancelHistory(ctx context.Context, f CancelHistoryFilter) ([]model.CancellationRecord, error) {
	var out []model.CancellationRecord
	err := c.do(ctx, "cancel history", http.MethodGet, "/api/admin/cancel-history/", f.query(), nil, &out, "취소 이력을 불러오지 못했습니다.")
	return out, err
}
