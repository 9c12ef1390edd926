package model

import (
	"errors"
	"net/url"
	"strconv"
)

// Receipt is the authoritative summary of a successful booking.  It travels
// to the completion page as query parameters.
type Receipt struct {
	ReservationID uint64 `json:"res_id"`
	MatchID       uint64 `json:"match_id"`
	SeatLabel     string `json:"seat_label"`
	Price         int    `json:"price"`
}

// Query encodes the receipt as completion page parameters.
func (r Receipt) Query() url.Values {
	return url.Values{
		"res_id":     {strconv.FormatUint(r.ReservationID, 10)},
		"match_id":   {strconv.FormatUint(r.MatchID, 10)},
		"seat_label": {r.SeatLabel},
		"price":      {strconv.Itoa(r.Price)},
	}
}

// ParseReceipt reads a receipt back from completion page parameters.
func ParseReceipt(q url.Values) (Receipt, error) {
	resID, err := strconv.ParseUint(q.Get("res_id"), 10, 64)
	if err != nil || resID == 0 {
		return Receipt{}, errors.New("res_id is required")
	}
	matchID, err := strconv.ParseUint(q.Get("match_id"), 10, 64)
	if err != nil || matchID == 0 {
		return Receipt{}, errors.New("match_id is required")
	}
	price, err := strconv.Atoi(q.Get("price"))
	if err != nil {
		return Receipt{}, errors.New("price is required")
	}
	return Receipt{ReservationID: resID, MatchID: matchID, SeatLabel: q.Get("seat_label"), Price: price}, nil
}
