package store

import (
	"context"
	"strings"

	"github.com/Dosada05/league-portal/models"
)

// TeamCascade describes everything removed together with a team.
type TeamCascade struct {
	TeamID    string   `json:"teamId"`
	PlayerIDs []string `json:"playerIds"`
	MatchIDs  []string `json:"matchIds"`
}

func (s *Store) Teams() Snapshot[models.Team] {
	release := s.acquire(nil, kinds(models.KindTeams))
	defer release()
	return s.teams.snapshot()
}

func (s *Store) Team(id string) (models.Team, error) {
	release := s.acquire(nil, kinds(models.KindTeams))
	defer release()
	team, ok := s.teams.get(id)
	if !ok {
		return models.Team{}, models.NotFound(models.KindTeams, id)
	}
	return team, nil
}

// teamMutation covers the derived player and club snapshots: both resolve
// team data on read.
func teamMutation() Mutation {
	return mutated(models.KindTeams, models.KindPlayers, models.KindClubs)
}

func (s *Store) CreateTeam(ctx context.Context, team models.Team) (models.Team, Mutation, error) {
	if err := requireID(team.ID); err != nil {
		return models.Team{}, Mutation{}, err
	}
	release := s.acquire(kinds(models.KindTeams), kinds(models.KindClubs))
	defer release()

	if _, exists := s.teams.get(team.ID); exists {
		return models.Team{}, Mutation{}, models.NewConflictError("id", "team %q already exists", team.ID)
	}
	team.CreatedAt = s.now().UTC()
	team.UpdatedAt = team.CreatedAt
	if err := s.saveTeamLocked(ctx, team); err != nil {
		return models.Team{}, Mutation{}, err
	}
	return team, teamMutation(), nil
}

// UpdateTeam applies fn to a copy of the stored team and commits the result
// if it still satisfies every referential check.
func (s *Store) UpdateTeam(ctx context.Context, id string, fn func(*models.Team) error) (models.Team, Mutation, error) {
	release := s.acquire(kinds(models.KindTeams), kinds(models.KindClubs))
	defer release()

	current, ok := s.teams.get(id)
	if !ok {
		return models.Team{}, Mutation{}, models.NotFound(models.KindTeams, id)
	}
	updated := current
	if err := fn(&updated); err != nil {
		return models.Team{}, Mutation{}, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now().UTC()
	if err := s.saveTeamLocked(ctx, updated); err != nil {
		return models.Team{}, Mutation{}, err
	}
	return updated, teamMutation(), nil
}

func (s *Store) saveTeamLocked(ctx context.Context, team models.Team) error {
	if team.ClubID != nil {
		if _, ok := s.clubs.get(*team.ClubID); !ok {
			return models.NewValidationError("clubId", "club %q does not exist", *team.ClubID)
		}
	}
	for _, other := range s.teams.items {
		if other.ID != team.ID && strings.EqualFold(other.Name, team.Name) {
			return models.NewConflictError("name", "team name %q is already in use", team.Name)
		}
	}

	var change Change
	change.upsert(models.KindTeams, team)
	if err := s.persist(ctx, change); err != nil {
		return err
	}
	s.teams.put(team)
	s.teams.touch()
	return nil
}

// RemoveTeam deletes a team together with its players and every match it
// plays in. Nothing is removed if the cascade cannot be persisted.
func (s *Store) RemoveTeam(ctx context.Context, id string) (TeamCascade, Mutation, error) {
	release := s.acquire(kinds(models.KindTeams, models.KindPlayers, models.KindMatches), nil)
	defer release()

	if _, ok := s.teams.get(id); !ok {
		return TeamCascade{}, Mutation{}, models.NotFound(models.KindTeams, id)
	}

	cascade := TeamCascade{TeamID: id, PlayerIDs: []string{}, MatchIDs: []string{}}
	var change Change
	change.delete(models.KindTeams, id)
	for _, p := range s.players.list() {
		if p.TeamID == id {
			cascade.PlayerIDs = append(cascade.PlayerIDs, p.ID)
			change.delete(models.KindPlayers, p.ID)
		}
	}
	for _, m := range s.matches.list() {
		if m.Involves(id) {
			cascade.MatchIDs = append(cascade.MatchIDs, m.ID)
			change.delete(models.KindMatches, m.ID)
		}
	}
	if err := s.persist(ctx, change); err != nil {
		return TeamCascade{}, Mutation{}, err
	}

	s.teams.remove(id)
	s.teams.touch()
	for _, pid := range cascade.PlayerIDs {
		s.players.remove(pid)
	}
	s.players.touch()

	mutation := teamMutation()
	if len(cascade.MatchIDs) > 0 {
		for _, mid := range cascade.MatchIDs {
			s.matches.remove(mid)
		}
		s.matches.touch()
		mutation.Kinds = append(mutation.Kinds, models.KindMatches)
	}
	return cascade, mutation, nil
}
