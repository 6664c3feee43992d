package models

// Bands are inclusive upper positions of the champion and playoff zones.
// Every position after PlayoffMax is in the relegation zone.
type Bands struct {
	ChampionMax int `json:"championMax" koanf:"champion_max"`
	PlayoffMax  int `json:"playoffMax" koanf:"playoff_max"`
}

type Settings struct {
	SeasonName string `json:"seasonName"`
	PointsWin  int    `json:"pointsWin"`
	PointsDraw int    `json:"pointsDraw"`
	PointsLoss int    `json:"pointsLoss"`
	Bands      Bands  `json:"bands"`
}

type DashboardStats struct {
	Teams           int       `json:"teams"`
	Clubs           int       `json:"clubs"`
	Players         int       `json:"players"`
	MatchesUpcoming int       `json:"matchesUpcoming"`
	MatchesLive     int       `json:"matchesLive"`
	MatchesFinished int       `json:"matchesFinished"`
	Clips           ClipStats `json:"clips"`
	Sessions        int       `json:"sessions"`
}

// CleanupResult reports how many entities of each kind were removed.
type CleanupResult struct {
	Teams    int `json:"teams"`
	Clubs    int `json:"clubs"`
	Players  int `json:"players"`
	Matches  int `json:"matches"`
	Brackets int `json:"brackets"`
}
