package model

import "fmt"

// Seat is one bookable seat of a match as last seen by the client.  The
// snapshot can go stale: IsReserved reflects the backend at fetch time only,
// and the backend's reservations remain the authority.
//
// Fields:
//
//	ID         – seats.seat_id
//	Block      – block code
//	RowNo      – row within the block
//	SeatNumber – number within the row
//	Grade      – price tier
//	Price      – price in KRW
//	IsReserved – reserved flag at fetch time
type Seat struct {
	ID         uint64 `json:"seat_id"`
	Block      string `json:"block"`
	RowNo      string `json:"row_no"`
	SeatNumber string `json:"seat_number"`
	Grade      string `json:"grade"`
	Price      int    `json:"price"`
	IsReserved bool   `json:"is_reserved"`
}

// SeatLabel builds the composite human-readable label of a seat.
func SeatLabel(block, rowNo, seatNumber string) string {
	return fmt.Sprintf("%s블록 %s열 %s번", block, rowNo, seatNumber)
}

// Label is the seat's composite human-readable label.
func (s Seat) Label() string { return SeatLabel(s.Block, s.RowNo, s.SeatNumber) }
