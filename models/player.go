package models

import "time"

type Position string

const (
	PositionGoalkeeper          Position = "Portero"
	PositionCenterBack          Position = "Defensa Central"
	PositionRightBack           Position = "Lateral Derecho"
	PositionLeftBack            Position = "Lateral Izquierdo"
	PositionDefensiveMidfielder Position = "Mediocampista Defensivo"
	PositionCentralMidfielder   Position = "Mediocampista Central"
	PositionAttackingMidfielder Position = "Mediocampista Ofensivo"
	PositionRightWinger         Position = "Extremo Derecho"
	PositionLeftWinger          Position = "Extremo Izquierdo"
	PositionStriker             Position = "Delantero Centro"
)

// PositionOrder is the display order of positions on a roster.
var PositionOrder = []Position{
	PositionGoalkeeper,
	PositionCenterBack,
	PositionRightBack,
	PositionLeftBack,
	PositionDefensiveMidfielder,
	PositionCentralMidfielder,
	PositionAttackingMidfielder,
	PositionRightWinger,
	PositionLeftWinger,
	PositionStriker,
}

// Rank returns the index of p in PositionOrder, or len(PositionOrder) for
// unknown values so they sort last.
func (p Position) Rank() int {
	for i, known := range PositionOrder {
		if p == known {
			return i
		}
	}
	return len(PositionOrder)
}

func (p Position) Valid() bool {
	return p.Rank() < len(PositionOrder)
}

type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ShirtNumber int       `json:"shirtNumber"`
	Position    Position  `json:"position"`
	TeamID      string    `json:"teamId"`
	TeamName    string    `json:"clubName,omitempty"` // resolved on read
	Goals       int       `json:"goals"`
	Assists     int       `json:"assists"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Player) EntityID() string { return p.ID }

type StatType string

const (
	StatGoals   StatType = "goals"
	StatAssists StatType = "assists"
)

// PlayerStatChange is a notification-only event, never used to reconcile state.
type PlayerStatChange struct {
	PlayerName string   `json:"playerName"`
	StatType   StatType `json:"statType"`
	Value      int      `json:"value"`
}
