package store

import (
	"context"

	"github.com/Dosada05/league-portal/models"
)

func bracketMutation() Mutation {
	return mutated(models.KindPlayoffs)
}

// Bracket returns the current playoff bracket. At most one exists.
func (s *Store) Bracket() (models.Bracket, uint64, bool) {
	release := s.acquire(nil, kinds(models.KindPlayoffs))
	defer release()

	for _, b := range s.playoffs.items {
		return b, s.playoffs.version, true
	}
	return models.Bracket{}, s.playoffs.version, false
}

// ReplaceBracket stores b and drops any previous bracket in the same change.
func (s *Store) ReplaceBracket(ctx context.Context, b models.Bracket) (models.Bracket, Mutation, error) {
	if err := requireID(b.ID); err != nil {
		return models.Bracket{}, Mutation{}, err
	}
	release := s.acquire(kinds(models.KindPlayoffs), kinds(models.KindTeams))
	defer release()

	for i, id := range b.TeamIDs {
		if _, ok := s.teams.get(id); !ok {
			return models.Bracket{}, Mutation{}, models.NewValidationError("teamIds", "team %q (seed %d) does not exist", id, i+1)
		}
	}
	b.CreatedAt = s.now().UTC()
	b.UpdatedAt = b.CreatedAt

	var change Change
	for id := range s.playoffs.items {
		if id != b.ID {
			change.delete(models.KindPlayoffs, id)
		}
	}
	change.upsert(models.KindPlayoffs, b)
	if err := s.persist(ctx, change); err != nil {
		return models.Bracket{}, Mutation{}, err
	}
	s.playoffs.clear()
	s.playoffs.put(b)
	s.playoffs.touch()
	return b, bracketMutation(), nil
}

func (s *Store) UpdateBracket(ctx context.Context, fn func(*models.Bracket) error) (models.Bracket, Mutation, error) {
	release := s.acquire(kinds(models.KindPlayoffs), nil)
	defer release()

	var current models.Bracket
	found := false
	for _, b := range s.playoffs.items {
		current, found = b, true
	}
	if !found {
		return models.Bracket{}, Mutation{}, models.NotFound(models.KindPlayoffs, "current")
	}

	updated := current
	updated.Matches = append([]models.PlayoffMatch(nil), current.Matches...)
	if err := fn(&updated); err != nil {
		return models.Bracket{}, Mutation{}, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now().UTC()

	var change Change
	change.upsert(models.KindPlayoffs, updated)
	if err := s.persist(ctx, change); err != nil {
		return models.Bracket{}, Mutation{}, err
	}
	s.playoffs.put(updated)
	s.playoffs.touch()
	return updated, bracketMutation(), nil
}

func (s *Store) RemoveBracket(ctx context.Context) (int, Mutation, error) {
	release := s.acquire(kinds(models.KindPlayoffs), nil)
	defer release()

	if len(s.playoffs.items) == 0 {
		return 0, Mutation{}, nil
	}
	var change Change
	for id := range s.playoffs.items {
		change.delete(models.KindPlayoffs, id)
	}
	if err := s.persist(ctx, change); err != nil {
		return 0, Mutation{}, err
	}
	n := s.playoffs.clear()
	s.playoffs.touch()
	return n, bracketMutation(), nil
}
