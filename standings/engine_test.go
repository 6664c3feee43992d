package standings

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-portal/models"
)

func score(v int) *int { return &v }

func finished(id, home, away string, hs, as int) models.Match {
	return models.Match{
		ID: id, HomeTeamID: home, AwayTeamID: away,
		Status: models.MatchStatusFinished, HomeScore: score(hs), AwayScore: score(as),
	}
}

func TestCompute_TwoMatchExample(t *testing.T) {
	teams := []models.Team{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	matches := []models.Match{
		finished("m1", "a", "b", 2, 1),
		finished("m2", "b", "a", 0, 0),
	}

	rows := Compute(teams, matches, DefaultRules())
	require.Len(t, rows, 2)

	a, b := rows[0], rows[1]
	assert.Equal(t, models.StandingsRow{
		Position: 1, TeamID: "a", TeamName: "A", Played: 2, Won: 1, Drawn: 1, Lost: 0,
		GoalsFor: 2, GoalsAgainst: 1, GoalDifference: 1, Points: 4, Zone: models.ZoneChampion,
	}, a)
	assert.Equal(t, models.StandingsRow{
		Position: 2, TeamID: "b", TeamName: "B", Played: 2, Won: 0, Drawn: 1, Lost: 1,
		GoalsFor: 1, GoalsAgainst: 2, GoalDifference: -1, Points: 1, Zone: models.ZonePlayoff,
	}, b)
}

func TestCompute_OnlyTeamsWithFinishedMatches(t *testing.T) {
	teams := []models.Team{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}
	matches := []models.Match{
		finished("m1", "a", "b", 1, 0),
		{ID: "m2", HomeTeamID: "b", AwayTeamID: "c", Status: models.MatchStatusUpcoming},
	}

	rows := Compute(teams, matches, DefaultRules())
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].TeamID)
	assert.Equal(t, "b", rows[1].TeamID)
}

func TestCompute_NoFinishedMatchesListsEveryTeamAtZero(t *testing.T) {
	teams := []models.Team{{ID: "z", Name: "Zeta"}, {ID: "a", Name: "Alpha"}}
	live := models.Match{ID: "m", HomeTeamID: "a", AwayTeamID: "z", Status: models.MatchStatusLive}

	rows := Compute(teams, []models.Match{live}, DefaultRules())
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].TeamName)
	assert.Equal(t, "Zeta", rows[1].TeamName)
	for _, r := range rows {
		assert.Zero(t, r.Played)
		assert.Zero(t, r.Points)
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	assert.Empty(t, Compute(nil, nil, DefaultRules()))
}

func TestCompute_TieBreakByNameIsDeterministic(t *testing.T) {
	teams := []models.Team{{ID: "1", Name: "Punta Coco FC"}, {ID: "2", Name: "BKS FC"}, {ID: "3", Name: "Jumpers FC"}, {ID: "4", Name: "Coiner FC"}}
	// Both pairs end level on points, goal difference and goals for.
	matches := []models.Match{
		finished("m1", "1", "3", 1, 1),
		finished("m2", "2", "4", 1, 1),
	}

	first := Compute(teams, matches, DefaultRules())
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Match(nil), matches...)
		rand.New(rand.NewSource(int64(i))).Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, first, Compute(teams, shuffled, DefaultRules()))
	}

	names := make([]string, len(first))
	for i, r := range first {
		names[i] = r.TeamName
	}
	assert.Equal(t, []string{"BKS FC", "Coiner FC", "Jumpers FC", "Punta Coco FC"}, names)
}

func TestCompute_SortKeys(t *testing.T) {
	teams := []models.Team{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}, {ID: "d", Name: "D"}}
	matches := []models.Match{
		finished("1", "a", "d", 1, 0), // a: 3 pts, gd +1, gf 1
		finished("2", "b", "d", 3, 2), // b: 3 pts, gd +1, gf 3
		finished("3", "c", "d", 4, 0), // c: 3 pts, gd +4
	}

	rows := Compute(teams, matches, DefaultRules())
	order := []string{rows[0].TeamID, rows[1].TeamID, rows[2].TeamID, rows[3].TeamID}
	assert.Equal(t, []string{"c", "b", "a", "d"}, order)
}

func TestCompute_RandomSeasonsStayConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for season := 0; season < 50; season++ {
		n := 2 + rng.Intn(11)
		teams := make([]models.Team, n)
		for i := range teams {
			teams[i] = models.Team{ID: fmt.Sprintf("t%02d", i), Name: fmt.Sprintf("Team %c", 'A'+rng.Intn(6))}
		}
		var matches []models.Match
		for i := 0; i < rng.Intn(40); i++ {
			h, a := rng.Intn(n), rng.Intn(n)
			if h == a {
				continue
			}
			matches = append(matches, finished(fmt.Sprint(i), teams[h].ID, teams[a].ID, rng.Intn(5), rng.Intn(5)))
		}

		rows := Compute(teams, matches, DefaultRules())

		seen := make(map[int]bool)
		won, lost, drawn := 0, 0, 0
		for i, r := range rows {
			assert.False(t, seen[r.Position], "duplicate position %d", r.Position)
			seen[r.Position] = true
			assert.Equal(t, i+1, r.Position)
			assert.Equal(t, r.GoalsFor-r.GoalsAgainst, r.GoalDifference)
			assert.Equal(t, 3*r.Won+r.Drawn, r.Points)
			assert.Equal(t, r.Played, r.Won+r.Drawn+r.Lost)
			if i > 0 {
				assert.False(t, ranksAbove(r, rows[i-1]), "row %d outranks row %d", i, i-1)
			}
			won += r.Won
			lost += r.Lost
			drawn += r.Drawn
		}
		assert.Equal(t, won, lost)
		assert.Zero(t, drawn%2)
	}
}

func TestRules_BandsAreConfigurable(t *testing.T) {
	rules := DefaultRules()
	assert.Equal(t, models.ZoneChampion, rules.Zone(1))
	assert.Equal(t, models.ZonePlayoff, rules.Zone(2))
	assert.Equal(t, models.ZonePlayoff, rules.Zone(8))
	assert.Equal(t, models.ZoneRelegation, rules.Zone(9))

	rules.Bands = models.Bands{ChampionMax: 2, PlayoffMax: 4}
	assert.Equal(t, models.ZoneChampion, rules.Zone(2))
	assert.Equal(t, models.ZoneRelegation, rules.Zone(5))
}

func TestLeaderboard_TieBreakByName(t *testing.T) {
	players := []models.Player{
		{ID: "1", Name: "Beta", Goals: 5},
		{ID: "2", Name: "Alpha", Goals: 5},
		{ID: "3", Name: "Gamma", Goals: 3},
	}

	entries, err := Leaderboard(players, MetricGoals, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Alpha", entries[0].PlayerName)
	assert.Equal(t, "Beta", entries[1].PlayerName)
	assert.Equal(t, "Gamma", entries[2].PlayerName)
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func TestLeaderboard_LimitAndMetric(t *testing.T) {
	players := []models.Player{
		{ID: "1", Name: "A", Assists: 1},
		{ID: "2", Name: "B", Assists: 7},
		{ID: "3", Name: "C", Assists: 4},
	}

	entries, err := Leaderboard(players, MetricAssists, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "B", entries[0].PlayerName)
	assert.Equal(t, 7, entries[0].Value)
	assert.Equal(t, "C", entries[1].PlayerName)
}

func TestLeaderboard_EmptyAndUnknownMetric(t *testing.T) {
	entries, err := Leaderboard(nil, MetricGoals, 5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = Leaderboard(nil, Metric("yellow_cards"), 5)
	var cerr *ComputationError
	assert.ErrorAs(t, err, &cerr)

	_, err = ParseMetric("yellow_cards")
	assert.ErrorAs(t, err, &cerr)

	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricGoals, m)
}

func TestTotals(t *testing.T) {
	players := []models.Player{{Goals: 4, Assists: 1}, {Goals: 3, Assists: 2}}
	matches := []models.Match{
		finished("1", "a", "b", 3, 1),
		finished("2", "a", "c", 2, 1),
		finished("3", "b", "c", 0, 0),
		{ID: "4", Status: models.MatchStatusUpcoming},
	}

	totals := Totals(players, matches)
	assert.Equal(t, 7, totals.TotalGoals)
	assert.Equal(t, 3, totals.TotalAssists)
	assert.Equal(t, 3, totals.FinishedMatches)
	assert.InDelta(t, 2.3, totals.AverageGoalsPerMatch, 1e-9)
}

func TestTotals_NoFinishedMatchesGuardsDivision(t *testing.T) {
	totals := Totals([]models.Player{{Goals: 5}}, nil)
	assert.Equal(t, 0, totals.FinishedMatches)
	assert.InDelta(t, 5.0, totals.AverageGoalsPerMatch, 1e-9)

	assert.Equal(t, models.LeaderboardTotals{}, Totals(nil, nil))
}
