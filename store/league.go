package store

import "github.com/Dosada05/league-portal/models"

// League is a consistent view of the collections standings and leaderboards
// derive from: all three are read under one set of locks.
type League struct {
	Teams   Snapshot[models.Team]
	Players Snapshot[models.Player]
	Matches Snapshot[models.Match]
}

// Version moves whenever any collection in the view does.
func (l League) Version() uint64 {
	return l.Teams.Version + l.Players.Version + l.Matches.Version
}

func (s *Store) League() League {
	release := s.acquire(nil, kinds(models.KindTeams, models.KindPlayers, models.KindMatches))
	defer release()
	return League{
		Teams:   s.teams.snapshot(),
		Players: s.playersLocked(),
		Matches: s.matches.snapshot(),
	}
}
