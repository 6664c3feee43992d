package models

import "time"

type MatchStatus string

const (
	MatchStatusUpcoming MatchStatus = "upcoming"
	MatchStatusLive     MatchStatus = "live"
	MatchStatusFinished MatchStatus = "finished"

	// matchStatusScheduled is accepted on input for older admin pages.
	matchStatusScheduled MatchStatus = "scheduled"
)

// Normalize maps input aliases onto the canonical status set.
func (s MatchStatus) Normalize() MatchStatus {
	if s == matchStatusScheduled || s == "" {
		return MatchStatusUpcoming
	}
	return s
}

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusUpcoming, MatchStatusLive, MatchStatusFinished:
		return true
	}
	return false
}

type Match struct {
	ID         string      `json:"id"`
	HomeTeamID string      `json:"homeTeamId"`
	AwayTeamID string      `json:"awayTeamId"`
	Date       string      `json:"date"` // YYYY-MM-DD
	Time       string      `json:"time"` // HH:MM
	Venue      string      `json:"venue"`
	Matchday   int         `json:"matchday"`
	Status     MatchStatus `json:"status"`
	HomeScore  *int        `json:"homeScore"`
	AwayScore  *int        `json:"awayScore"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (m Match) EntityID() string { return m.ID }

func (m Match) Finished() bool { return m.Status == MatchStatusFinished }

// Involves reports whether the team plays in the match.
func (m Match) Involves(teamID string) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// SameFixture reports whether two matches describe the same fixture.
func (m Match) SameFixture(other Match) bool {
	return m.HomeTeamID == other.HomeTeamID &&
		m.AwayTeamID == other.AwayTeamID &&
		m.Date == other.Date &&
		m.Matchday == other.Matchday
}
