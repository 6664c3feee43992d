package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/league-portal/models"
)

const dateLayout = "2006-01-02"

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate uses the circle method: every team meets every other team once
// per leg, one match per team per matchday. With an odd number of teams one
// team rests each matchday. The second leg mirrors the first with home and
// away swapped.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params FixtureParams) ([]models.Match, error) {
	teams := params.TeamIDs
	if len(teams) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: not enough teams (found %d, min 2 required)", len(teams))
	}
	legs := params.Legs
	if legs != 2 {
		legs = 1
	}
	days := params.DaysBetween
	if days <= 0 {
		days = 7
	}

	slots := make([]string, len(teams))
	copy(slots, teams)
	if len(slots)%2 == 1 {
		slots = append(slots, "") // rest slot
	}
	n := len(slots)
	rounds := n - 1

	matches := make([]models.Match, 0, legs*rounds*n/2)
	for leg := 0; leg < legs; leg++ {
		rotation := make([]string, n)
		copy(rotation, slots)

		for r := 0; r < rounds; r++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			matchday := leg*rounds + r + 1
			date := params.StartDate.AddDate(0, 0, (matchday-1)*days).Format(dateLayout)

			for i := 0; i < n/2; i++ {
				home, away := rotation[i], rotation[n-1-i]
				if home == "" || away == "" {
					continue
				}
				// Alternate the fixed team's venue so nobody plays every round at home.
				if i == 0 && r%2 == 1 {
					home, away = away, home
				}
				if leg == 1 {
					home, away = away, home
				}
				matches = append(matches, models.Match{
					HomeTeamID: home,
					AwayTeamID: away,
					Date:       date,
					Time:       params.KickOff,
					Venue:      params.Venue,
					Matchday:   matchday,
					Status:     models.MatchStatusUpcoming,
				})
			}

			// Keep the first slot fixed and rotate the rest clockwise.
			last := rotation[n-1]
			copy(rotation[2:], rotation[1:n-1])
			rotation[1] = last
		}
	}
	return matches, nil
}
