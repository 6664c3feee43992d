package models

// Kind names an entity collection held by the store.
type Kind string

const (
	KindTeams    Kind = "teams"
	KindClubs    Kind = "clubs"
	KindPlayers  Kind = "players"
	KindMatches  Kind = "matches"
	KindClips    Kind = "clips"
	KindPlayoffs Kind = "playoffs"
)

// AllKinds is the fixed lock order used whenever several collections are
// mutated together.
var AllKinds = []Kind{KindClubs, KindTeams, KindPlayers, KindMatches, KindClips, KindPlayoffs}

func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}
