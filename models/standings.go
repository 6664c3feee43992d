package models

type Zone string

const (
	ZoneChampion   Zone = "champion"
	ZonePlayoff    Zone = "playoff"
	ZoneRelegation Zone = "relegation"
)

// StandingsRow is derived from finished matches and never stored.
type StandingsRow struct {
	Position       int    `json:"position"`
	TeamID         string `json:"teamId"`
	TeamName       string `json:"teamName"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
	Zone           Zone   `json:"zone"`
}

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	TeamID     string `json:"teamId"`
	Value      int    `json:"value"`
}

type LeaderboardTotals struct {
	TotalGoals           int     `json:"totalGoals"`
	TotalAssists         int     `json:"totalAssists"`
	FinishedMatches      int     `json:"finishedMatches"`
	AverageGoalsPerMatch float64 `json:"averageGoalsPerMatch"`
}
