package models

import "time"

type PlayoffMatch struct {
	ID           string      `json:"id"` // R<round>M<order>
	Round        int         `json:"round"`
	OrderInRound int         `json:"orderInRound"`
	HomeTeamID   *string     `json:"homeTeamId"`
	AwayTeamID   *string     `json:"awayTeamId"`
	HomeSource   *string     `json:"homeSource,omitempty"`
	AwaySource   *string     `json:"awaySource,omitempty"`
	HomeScore    *int        `json:"homeScore"`
	AwayScore    *int        `json:"awayScore"`
	Status       MatchStatus `json:"status"`
	WinnerID     *string     `json:"winnerId"`
}

type Bracket struct {
	ID        string         `json:"id"`
	Size      int            `json:"size"`
	TeamIDs   []string       `json:"teamIds"`
	Matches   []PlayoffMatch `json:"matches"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (b Bracket) EntityID() string { return b.ID }

// Champion returns the winner of the final, if it has been played.
func (b Bracket) Champion() *string {
	if len(b.Matches) == 0 {
		return nil
	}
	final := b.Matches[len(b.Matches)-1]
	return final.WinnerID
}
