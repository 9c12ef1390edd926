package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iliyamo/matchday-seat-client/internal/model"
)

// ListMatches calls GET /api/matches/.
func (c *Client) ListMatches(ctx context.Context) ([]model.Match, error) {
	var out []model.Match
	err := c.do(ctx, "list matches", http.MethodGet, "/api/matches/", nil, nil, &out, "경기 목록을 불러오지 못했습니다.")
	return out, err
}

// ListSeats calls GET /api/matches/{id}/seats/.  Seats come back in the
// backend's block/row/number order.
func (c *Client) ListSeats(ctx context.Context, matchID uint64) ([]model.Seat, error) {
	if matchID == 0 {
		return nil, &ValidationError{Field: "match_id", Message: "match_id가 없습니다!"}
	}
	var out []model.Seat
	path := fmt.Sprintf("/api/matches/%d/seats/", matchID)
	err := c.do(ctx, "list seats", http.MethodGet, path, nil, nil, &out, "좌석 목록을 불러오지 못했습니다.")
	return out, err
}
