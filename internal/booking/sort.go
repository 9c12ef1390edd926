package booking

import (
	"sort"
	"strings"

	"github.com/iliyamo/matchday-seat-client/internal/model"
)

// SortMode selects the order of the seat inventory.
type SortMode string

const (
	SortDefault   SortMode = "default"    // backend order
	SortPriceAsc  SortMode = "price_asc"  // cheapest first
	SortPriceDesc SortMode = "price_desc" // most expensive first
)

// ParseSortMode maps user input to a SortMode; unknown values select the
// default order.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	}
	return SortDefault
}

// SortSeats returns a sorted copy of seats.  The sort is stable: seats with
// the same price keep their backend order.
func SortSeats(seats []model.Seat, mode SortMode) []model.Seat {
	out := make([]model.Seat, len(seats))
	copy(out, seats)
	switch mode {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}
