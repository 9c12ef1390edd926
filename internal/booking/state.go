package booking

// State is the position of a seat-listing session in the booking cycle.
//
//	Loading → Listed → BookingInFlight → BookingSucceeded (navigate away)
//	                                   → BookingRejected → Listed (after re-fetch)
type State int

const (
	Loading State = iota
	Listed
	BookingInFlight
	BookingSucceeded
	BookingRejected
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Listed:
		return "listed"
	case BookingInFlight:
		return "booking_in_flight"
	case BookingSucceeded:
		return "booking_succeeded"
	case BookingRejected:
		return "booking_rejected"
	}
	return "unknown"
}

// MarshalText lets states appear by name in JSON views.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
