package model

// MatchStats is one row of the per-match occupancy and sales report.
type MatchStats struct {
	MatchID          uint64  `json:"match_id"`
	MatchDate        string  `json:"match_date"`
	Stadium          string  `json:"stadium"`
	TotalSeats       int     `json:"total_seats"`
	SeatCount        int     `json:"seat_count"`
	ReservedSeats    int     `json:"reserved_seats"`
	OccupancyRate    float64 `json:"occupancy_rate"`
	TotalSales       float64 `json:"total_sales"`
	ReservationCount int     `json:"reservation_count"`
}

// AbuseCandidate is a user whose cancellation count crossed the backend's
// threshold.  ResID is a representative reservation and may be null.
type AbuseCandidate struct {
	UserID      uint64  `json:"user_id"`
	ResID       *uint64 `json:"res_id"`
	CancelCount int     `json:"cancel_count"`
}
