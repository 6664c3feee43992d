package store

import (
	"context"
	"sort"
	"strings"

	"github.com/Dosada05/league-portal/models"
)

func playerMutation() Mutation {
	return mutated(models.KindPlayers, models.KindClubs)
}

// Players returns players grouped by team name, then in position order.
func (s *Store) Players() Snapshot[models.Player] {
	release := s.acquire(nil, kinds(models.KindTeams, models.KindPlayers))
	defer release()
	return s.playersLocked()
}

func (s *Store) playersLocked() Snapshot[models.Player] {
	snap := s.players.snapshot()
	for i := range snap.Items {
		if team, ok := s.teams.get(snap.Items[i].TeamID); ok {
			snap.Items[i].TeamName = team.Name
		}
	}
	sort.SliceStable(snap.Items, func(i, j int) bool {
		return strings.ToLower(snap.Items[i].TeamName) < strings.ToLower(snap.Items[j].TeamName)
	})
	snap.Version += s.teams.version
	return snap
}

func (s *Store) Player(id string) (models.Player, error) {
	release := s.acquire(nil, kinds(models.KindTeams, models.KindPlayers))
	defer release()

	player, ok := s.players.get(id)
	if !ok {
		return models.Player{}, models.NotFound(models.KindPlayers, id)
	}
	if team, ok := s.teams.get(player.TeamID); ok {
		player.TeamName = team.Name
	}
	return player, nil
}

func (s *Store) CreatePlayer(ctx context.Context, player models.Player) (models.Player, Mutation, error) {
	if err := requireID(player.ID); err != nil {
		return models.Player{}, Mutation{}, err
	}
	release := s.acquire(kinds(models.KindPlayers), kinds(models.KindTeams))
	defer release()

	if _, exists := s.players.get(player.ID); exists {
		return models.Player{}, Mutation{}, models.NewConflictError("id", "player %q already exists", player.ID)
	}
	player.CreatedAt = s.now().UTC()
	player.UpdatedAt = player.CreatedAt
	if err := s.savePlayerLocked(ctx, &player); err != nil {
		return models.Player{}, Mutation{}, err
	}
	return player, playerMutation(), nil
}

// UpdatePlayer returns the stored state before and after fn was applied.
func (s *Store) UpdatePlayer(ctx context.Context, id string, fn func(*models.Player) error) (before, after models.Player, m Mutation, err error) {
	release := s.acquire(kinds(models.KindPlayers), kinds(models.KindTeams))
	defer release()

	current, ok := s.players.get(id)
	if !ok {
		return models.Player{}, models.Player{}, Mutation{}, models.NotFound(models.KindPlayers, id)
	}
	updated := current
	if err := fn(&updated); err != nil {
		return models.Player{}, models.Player{}, Mutation{}, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now().UTC()
	if err := s.savePlayerLocked(ctx, &updated); err != nil {
		return models.Player{}, models.Player{}, Mutation{}, err
	}
	if team, ok := s.teams.get(current.TeamID); ok {
		current.TeamName = team.Name
	}
	return current, updated, playerMutation(), nil
}

func (s *Store) savePlayerLocked(ctx context.Context, player *models.Player) error {
	team, ok := s.teams.get(player.TeamID)
	if !ok {
		return models.NewValidationError("teamId", "team %q does not exist", player.TeamID)
	}
	for _, other := range s.players.items {
		if other.ID != player.ID && other.TeamID == player.TeamID && other.ShirtNumber == player.ShirtNumber {
			return models.NewConflictError("shirtNumber", "number %d is already worn by %s in %s", player.ShirtNumber, other.Name, team.Name)
		}
	}
	player.TeamName = team.Name

	var change Change
	change.upsert(models.KindPlayers, *player)
	if err := s.persist(ctx, change); err != nil {
		return err
	}
	s.players.put(*player)
	s.players.touch()
	return nil
}

func (s *Store) RemovePlayer(ctx context.Context, id string) (models.Player, Mutation, error) {
	release := s.acquire(kinds(models.KindPlayers), nil)
	defer release()

	player, ok := s.players.get(id)
	if !ok {
		return models.Player{}, Mutation{}, models.NotFound(models.KindPlayers, id)
	}
	var change Change
	change.delete(models.KindPlayers, id)
	if err := s.persist(ctx, change); err != nil {
		return models.Player{}, Mutation{}, err
	}
	s.players.remove(id)
	s.players.touch()
	return player, playerMutation(), nil
}
