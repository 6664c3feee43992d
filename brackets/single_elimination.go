package brackets

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/league-portal/models"
)

var ErrBracketSize = errors.New("playoff bracket needs 4, 8 or 16 teams")

// AllowedSizes are the supported bracket formats.
var AllowedSizes = []int{4, 8, 16}

type node struct {
	teamID         *string
	sourceMatchUID *string
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() *SingleEliminationGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// Generate pairs seeds in order (1v2, 3v4, ...) in the first round. Later
// rounds hold placeholders that point at the matches feeding them.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, teamIDs []string) ([]models.PlayoffMatch, error) {
	n := len(teamIDs)
	if !validSize(n) {
		return nil, fmt.Errorf("%w (got %d)", ErrBracketSize, n)
	}
	seen := make(map[string]bool, n)
	for _, id := range teamIDs {
		if seen[id] {
			return nil, fmt.Errorf("team %q is seeded twice", id)
		}
		seen[id] = true
	}

	current := make([]*node, n)
	for i := range teamIDs {
		id := teamIDs[i]
		current[i] = &node{teamID: &id}
	}

	all := make([]models.PlayoffMatch, 0, n-1)
	for round := 1; len(current) > 1; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := make([]*node, 0, len(current)/2)
		for i := 0; i < len(current); i += 2 {
			uid := fmt.Sprintf("R%dM%d", round, i/2+1)
			m := models.PlayoffMatch{
				ID:           uid,
				Round:        round,
				OrderInRound: i/2 + 1,
				Status:       models.MatchStatusUpcoming,
			}
			home, away := current[i], current[i+1]
			m.HomeTeamID, m.HomeSource = home.teamID, home.sourceMatchUID
			m.AwayTeamID, m.AwaySource = away.teamID, away.sourceMatchUID

			all = append(all, m)
			next = append(next, &node{sourceMatchUID: &uid})
		}
		current = next
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Round != all[j].Round {
			return all[i].Round < all[j].Round
		}
		return all[i].OrderInRound < all[j].OrderInRound
	})
	return all, nil
}

func validSize(n int) bool {
	for _, size := range AllowedSizes {
		if n == size {
			return true
		}
	}
	return false
}

// Advance records a knockout result and moves the winner into the slot that
// waits on this match.
func Advance(b *models.Bracket, matchID string, homeScore, awayScore int) error {
	idx := -1
	for i := range b.Matches {
		if b.Matches[i].ID == matchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.NotFound(models.KindPlayoffs, matchID)
	}
	m := &b.Matches[idx]

	switch {
	case m.Status == models.MatchStatusFinished:
		return models.NewValidationError("status", "playoff match %s is already finished", matchID)
	case m.HomeTeamID == nil || m.AwayTeamID == nil:
		return models.NewValidationError("id", "playoff match %s is still waiting for its teams", matchID)
	case homeScore < 0:
		return models.NewValidationError("homeScore", "must be zero or more")
	case awayScore < 0:
		return models.NewValidationError("awayScore", "must be zero or more")
	case homeScore == awayScore:
		return models.NewValidationError("awayScore", "a knockout match needs a winner")
	}

	m.HomeScore, m.AwayScore = &homeScore, &awayScore
	m.Status = models.MatchStatusFinished
	winner := *m.AwayTeamID
	if homeScore > awayScore {
		winner = *m.HomeTeamID
	}
	m.WinnerID = &winner

	for i := range b.Matches {
		next := &b.Matches[i]
		if next.HomeSource != nil && *next.HomeSource == matchID {
			w := winner
			next.HomeTeamID = &w
		}
		if next.AwaySource != nil && *next.AwaySource == matchID {
			w := winner
			next.AwayTeamID = &w
		}
	}
	return nil
}
