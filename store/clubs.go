package store

import (
	"context"
	"strings"

	"github.com/Dosada05/league-portal/models"
)

func clubMutation() Mutation {
	return mutated(models.KindClubs)
}

// Clubs returns clubs with PlayerCount resolved from the current teams and
// players. The version moves whenever any of the three collections does.
func (s *Store) Clubs() Snapshot[models.Club] {
	release := s.acquire(nil, kinds(models.KindClubs, models.KindTeams, models.KindPlayers))
	defer release()

	snap := s.clubs.snapshot()
	counts := s.playerCountsLocked()
	for i := range snap.Items {
		snap.Items[i].PlayerCount = counts[snap.Items[i].ID]
	}
	snap.Version += s.teams.version + s.players.version
	return snap
}

func (s *Store) Club(id string) (models.Club, error) {
	release := s.acquire(nil, kinds(models.KindClubs, models.KindTeams, models.KindPlayers))
	defer release()

	club, ok := s.clubs.get(id)
	if !ok {
		return models.Club{}, models.NotFound(models.KindClubs, id)
	}
	club.PlayerCount = s.playerCountsLocked()[id]
	return club, nil
}

func (s *Store) playerCountsLocked() map[string]int {
	clubOfTeam := make(map[string]string, len(s.teams.items))
	for _, t := range s.teams.items {
		if t.ClubID != nil {
			clubOfTeam[t.ID] = *t.ClubID
		}
	}
	counts := make(map[string]int)
	for _, p := range s.players.items {
		if clubID, ok := clubOfTeam[p.TeamID]; ok {
			counts[clubID]++
		}
	}
	return counts
}

func (s *Store) CreateClub(ctx context.Context, club models.Club) (models.Club, Mutation, error) {
	if err := requireID(club.ID); err != nil {
		return models.Club{}, Mutation{}, err
	}
	release := s.acquire(kinds(models.KindClubs), nil)
	defer release()

	if _, exists := s.clubs.get(club.ID); exists {
		return models.Club{}, Mutation{}, models.NewConflictError("id", "club %q already exists", club.ID)
	}
	club.CreatedAt = s.now().UTC()
	club.UpdatedAt = club.CreatedAt
	club.PlayerCount = 0
	if err := s.saveClubLocked(ctx, club); err != nil {
		return models.Club{}, Mutation{}, err
	}
	return club, clubMutation(), nil
}

func (s *Store) UpdateClub(ctx context.Context, id string, fn func(*models.Club) error) (models.Club, Mutation, error) {
	release := s.acquire(kinds(models.KindClubs), nil)
	defer release()

	current, ok := s.clubs.get(id)
	if !ok {
		return models.Club{}, Mutation{}, models.NotFound(models.KindClubs, id)
	}
	updated := current
	if err := fn(&updated); err != nil {
		return models.Club{}, Mutation{}, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now().UTC()
	updated.PlayerCount = 0
	if err := s.saveClubLocked(ctx, updated); err != nil {
		return models.Club{}, Mutation{}, err
	}
	return updated, clubMutation(), nil
}

func (s *Store) saveClubLocked(ctx context.Context, club models.Club) error {
	for _, other := range s.clubs.items {
		if other.ID != club.ID && strings.EqualFold(other.Name, club.Name) {
			return models.NewConflictError("name", "club name %q is already in use", club.Name)
		}
	}
	var change Change
	change.upsert(models.KindClubs, club)
	if err := s.persist(ctx, change); err != nil {
		return err
	}
	s.clubs.put(club)
	s.clubs.touch()
	return nil
}

// RemoveClub deletes a club and detaches every team that referenced it.
// It returns the removed club so its logo can be released.
func (s *Store) RemoveClub(ctx context.Context, id string) (models.Club, Mutation, error) {
	release := s.acquire(kinds(models.KindClubs, models.KindTeams), nil)
	defer release()

	club, ok := s.clubs.get(id)
	if !ok {
		return models.Club{}, Mutation{}, models.NotFound(models.KindClubs, id)
	}

	var change Change
	change.delete(models.KindClubs, id)
	var detached []models.Team
	for _, t := range s.teams.list() {
		if t.ClubID != nil && *t.ClubID == id {
			t.ClubID = nil
			t.UpdatedAt = s.now().UTC()
			detached = append(detached, t)
			change.upsert(models.KindTeams, t)
		}
	}
	if err := s.persist(ctx, change); err != nil {
		return models.Club{}, Mutation{}, err
	}

	s.clubs.remove(id)
	s.clubs.touch()
	if len(detached) == 0 {
		return club, clubMutation(), nil
	}
	for _, t := range detached {
		s.teams.put(t)
	}
	s.teams.touch()
	return club, mutated(models.KindClubs, models.KindTeams, models.KindPlayers), nil
}
