package model

// Match is a fixture listed by the backend.  Matches are immutable once
// listed; the client only ever reads them.  MatchDate is kept exactly as the
// backend formats it because it is display-only.
type Match struct {
	ID         uint64 `json:"match_id"`
	MatchDate  string `json:"match_date"`
	Stadium    string `json:"stadium"`
	TotalSeats int    `json:"total_seats"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
}

// Title renders the one-line summary used in the match list.
func (m Match) Title() string {
	return m.MatchDate + " — " + m.Stadium + " — " + m.HomeTeam + " vs " + m.AwayTeam
}
