// Package standings derives league tables and leaderboards from matches and
// players. Every function is pure and total over well-formed input.
package standings

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Dosada05/league-portal/models"
)

// Rules are the scoring and zone settings of a season.
type Rules struct {
	PointsWin  int
	PointsDraw int
	PointsLoss int
	Bands      models.Bands
}

func DefaultRules() Rules {
	return Rules{
		PointsWin:  3,
		PointsDraw: 1,
		PointsLoss: 0,
		Bands:      models.Bands{ChampionMax: 1, PlayoffMax: 8},
	}
}

// RulesFromSettings extracts scoring rules from season settings.
func RulesFromSettings(s models.Settings) Rules {
	return Rules{
		PointsWin:  s.PointsWin,
		PointsDraw: s.PointsDraw,
		PointsLoss: s.PointsLoss,
		Bands:      s.Bands,
	}
}

// Zone classifies a 1-based table position.
func (r Rules) Zone(position int) models.Zone {
	switch {
	case position <= r.Bands.ChampionMax:
		return models.ZoneChampion
	case position <= r.Bands.PlayoffMax:
		return models.ZonePlayoff
	default:
		return models.ZoneRelegation
	}
}

// Compute builds the table for the teams that played at least one finished
// match, or for every known team at zero when nothing has finished yet.
func Compute(teams []models.Team, matches []models.Match, rules Rules) []models.StandingsRow {
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	rows := make(map[string]*models.StandingsRow)
	row := func(teamID string) *models.StandingsRow {
		r, ok := rows[teamID]
		if !ok {
			name, known := names[teamID]
			if !known {
				name = teamID
			}
			r = &models.StandingsRow{TeamID: teamID, TeamName: name}
			rows[teamID] = r
		}
		return r
	}

	for _, m := range matches {
		if !m.Finished() || m.HomeScore == nil || m.AwayScore == nil {
			continue
		}
		home, away := row(m.HomeTeamID), row(m.AwayTeamID)
		hs, as := *m.HomeScore, *m.AwayScore

		home.Played++
		away.Played++
		home.GoalsFor += hs
		home.GoalsAgainst += as
		away.GoalsFor += as
		away.GoalsAgainst += hs

		switch {
		case hs > as:
			home.Won++
			away.Lost++
			home.Points += rules.PointsWin
			away.Points += rules.PointsLoss
		case hs < as:
			away.Won++
			home.Lost++
			away.Points += rules.PointsWin
			home.Points += rules.PointsLoss
		default:
			home.Drawn++
			away.Drawn++
			home.Points += rules.PointsDraw
			away.Points += rules.PointsDraw
		}
	}

	if len(rows) == 0 {
		for _, t := range teams {
			row(t.ID)
		}
	}

	out := make([]models.StandingsRow, 0, len(rows))
	for _, r := range rows {
		r.GoalDifference = r.GoalsFor - r.GoalsAgainst
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return ranksAbove(out[i], out[j]) })

	for i := range out {
		out[i].Position = i + 1
		out[i].Zone = rules.Zone(out[i].Position)
	}
	return out
}

// ranksAbove orders by points, goal difference, goals for, then team name.
// Team id breaks the tie between equal names.
func ranksAbove(a, b models.StandingsRow) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return a.GoalDifference > b.GoalDifference
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	if a.TeamName != b.TeamName {
		return a.TeamName < b.TeamName
	}
	return a.TeamID < b.TeamID
}

type Metric string

const (
	MetricGoals   Metric = "goals"
	MetricAssists Metric = "assists"
)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricGoals, MetricAssists:
		return m, nil
	case "":
		return MetricGoals, nil
	}
	return "", &ComputationError{Op: "leaderboard", Reason: fmt.Sprintf("unknown metric %q", s)}
}

func (m Metric) value(p models.Player) (int, bool) {
	switch m {
	case MetricGoals:
		return p.Goals, true
	case MetricAssists:
		return p.Assists, true
	}
	return 0, false
}

// Leaderboard ranks players by metric, ties broken by name, and keeps the
// first limit entries. A limit of zero or less keeps everyone.
func Leaderboard(players []models.Player, metric Metric, limit int) ([]models.LeaderboardEntry, error) {
	if _, ok := metric.value(models.Player{}); !ok {
		return nil, &ComputationError{Op: "leaderboard", Reason: fmt.Sprintf("unknown metric %q", metric)}
	}

	ranked := make([]models.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		vi, _ := metric.value(ranked[i])
		vj, _ := metric.value(ranked[j])
		if vi != vj {
			return vi > vj
		}
		if ranked[i].Name != ranked[j].Name {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].ID < ranked[j].ID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]models.LeaderboardEntry, 0, len(ranked))
	for i, p := range ranked {
		v, _ := metric.value(p)
		out = append(out, models.LeaderboardEntry{
			Rank:       i + 1,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			TeamID:     p.TeamID,
			Value:      v,
		})
	}
	return out, nil
}

// Totals sums player stats and averages goals over finished matches. The
// denominator is at least one.
func Totals(players []models.Player, matches []models.Match) models.LeaderboardTotals {
	var t models.LeaderboardTotals
	for _, p := range players {
		t.TotalGoals += p.Goals
		t.TotalAssists += p.Assists
	}
	for _, m := range matches {
		if m.Finished() {
			t.FinishedMatches++
		}
	}
	t.AverageGoalsPerMatch = roundTenth(float64(t.TotalGoals) / float64(max(1, t.FinishedMatches)))
	return t
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
