package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/matchday-seat-client/internal/model"
)

// CreateReservation calls POST /api/reservations/.  Every field of the
// request is required; an incomplete request never leaves the client.
func (c *Client) CreateReservation(ctx context.Context, req model.BookingRequest) (model.BookingResult, error) {
	if err := validateBooking(req); err != nil {
		return model.BookingResult{}, err
	}
	var out model.BookingResult
	err := c.do(ctx, "create reservation", http.MethodPost, "/api/reservations/", nil, req, &out, "예매 실패")
	return out, err
}

func validateBooking(req model.BookingRequest) error {
	var missing []string
	if req.UserID == 0 {
		missing = append(missing, "user_id")
	}
	if req.MatchID == 0 {
		missing = append(missing, "match_id")
	}
	if req.SeatID == 0 {
		missing = append(missing, "seat_id")
	}
	if req.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(req.Method) == "" {
		missing = append(missing, "method")
	}
	if len(missing) > 0 {
		return &ValidationError{
			Field:   strings.Join(missing, ","),
			Message: strings.Join(missing, ", ") + " 모두 필요합니다.",
		}
	}
	return nil
}

// CancelReservation calls POST /api/reservations/{id}/cancel/.
func (c *Client) CancelReservation(ctx context.Context, resID uint64) (model.CancelResult, error) {
	if resID == 0 {
		return model.CancelResult{}, &ValidationError{Field: "res_id", Message: "예매 번호가 필요합니다."}
	}
	var out model.CancelResult
	path := fmt.Sprintf("/api/reservations/%d/cancel/", resID)
	err := c.do(ctx, "cancel reservation", http.MethodPost, path, nil, nil, &out, "예매 취소 중 오류가 발생했습니다.")
	return out, err
}

// ListMyReservations calls GET /api/my/reservations/?user_id=.  Cancelled
// reservations are included.
func (c *Client) ListMyReservations(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	if userID == 0 {
		return nil, &ValidationError{Field: "user_id", Message: "user_id가 필요합니다."}
	}
	q := url.Values{"user_id": {strconv.FormatUint(userID, 10)}}
	var out []model.Reservation
	err := c.do(ctx, "my reservations", http.MethodGet, "/api/my/reservations/", q, nil, &out, "예매 내역을 불러오지 못했습니다.")
	return out, err
}
