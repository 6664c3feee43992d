package brackets

import (
	"context"
	"time"

	"github.com/Dosada05/league-portal/models"
)

type FixtureParams struct {
	TeamIDs     []string
	Legs        int // 1 or 2
	StartDate   time.Time
	DaysBetween int
	KickOff     string // HH:MM, optional
	Venue       string
}

// FixtureGenerator builds a league calendar. Generated matches carry no id;
// the caller assigns one before storing them.
type FixtureGenerator interface {
	Generate(ctx context.Context, params FixtureParams) ([]models.Match, error)

	Name() string
}
