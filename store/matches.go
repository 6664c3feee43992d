package store

import (
	"context"

	"github.com/Dosada05/league-portal/models"
)

func matchMutation() Mutation {
	return mutated(models.KindMatches)
}

func (s *Store) Matches() Snapshot[models.Match] {
	release := s.acquire(nil, kinds(models.KindMatches))
	defer release()
	return s.matches.snapshot()
}

func (s *Store) Match(id string) (models.Match, error) {
	release := s.acquire(nil, kinds(models.KindMatches))
	defer release()
	match, ok := s.matches.get(id)
	if !ok {
		return models.Match{}, models.NotFound(models.KindMatches, id)
	}
	return match, nil
}

func (s *Store) CreateMatch(ctx context.Context, match models.Match) (models.Match, Mutation, error) {
	if err := requireID(match.ID); err != nil {
		return models.Match{}, Mutation{}, err
	}
	release := s.acquire(kinds(models.KindMatches), kinds(models.KindTeams))
	defer release()

	if _, exists := s.matches.get(match.ID); exists {
		return models.Match{}, Mutation{}, models.NewConflictError("id", "match %q already exists", match.ID)
	}
	if err := s.checkMatchLocked(match); err != nil {
		return models.Match{}, Mutation{}, err
	}
	match.CreatedAt = s.now().UTC()
	match.UpdatedAt = match.CreatedAt

	var change Change
	change.upsert(models.KindMatches, match)
	if err := s.persist(ctx, change); err != nil {
		return models.Match{}, Mutation{}, err
	}
	s.matches.put(match)
	s.matches.touch()
	return match, matchMutation(), nil
}

// CreateMatches stores every match that is not already present as the same
// fixture, in one change. Matches with a bad reference fail the whole batch.
func (s *Store) CreateMatches(ctx context.Context, batch []models.Match) ([]models.Match, int, Mutation, error) {
	release := s.acquire(kinds(models.KindMatches), kinds(models.KindTeams))
	defer release()

	existing := s.matches.list()
	created := make([]models.Match, 0, len(batch))
	skipped := 0
	now := s.now().UTC()

	var change Change
	for _, m := range batch {
		if err := requireID(m.ID); err != nil {
			return nil, 0, Mutation{}, err
		}
		if err := s.checkMatchLocked(m); err != nil {
			return nil, 0, Mutation{}, err
		}
		if containsFixture(existing, m) || containsFixture(created, m) {
			skipped++
			continue
		}
		m.CreatedAt = now
		m.UpdatedAt = now
		created = append(created, m)
		change.upsert(models.KindMatches, m)
	}
	if len(created) == 0 {
		return created, skipped, Mutation{}, nil
	}
	if err := s.persist(ctx, change); err != nil {
		return nil, 0, Mutation{}, err
	}
	for _, m := range created {
		s.matches.put(m)
	}
	s.matches.touch()
	return created, skipped, matchMutation(), nil
}

func containsFixture(list []models.Match, m models.Match) bool {
	for _, other := range list {
		if other.SameFixture(m) {
			return true
		}
	}
	return false
}

// UpdateMatch rejects any change that would move a finished match back to
// upcoming or live.
func (s *Store) UpdateMatch(ctx context.Context, id string, fn func(*models.Match) error) (before, after models.Match, m Mutation, err error) {
	release := s.acquire(kinds(models.KindMatches), kinds(models.KindTeams))
	defer release()

	current, ok := s.matches.get(id)
	if !ok {
		return models.Match{}, models.Match{}, Mutation{}, models.NotFound(models.KindMatches, id)
	}
	updated := current
	if err := fn(&updated); err != nil {
		return models.Match{}, models.Match{}, Mutation{}, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now().UTC()

	if current.Finished() && !updated.Finished() {
		return models.Match{}, models.Match{}, Mutation{}, models.NewValidationError("status", "a finished match cannot return to %s", updated.Status)
	}
	if err := s.checkMatchLocked(updated); err != nil {
		return models.Match{}, models.Match{}, Mutation{}, err
	}

	var change Change
	change.upsert(models.KindMatches, updated)
	if err := s.persist(ctx, change); err != nil {
		return models.Match{}, models.Match{}, Mutation{}, err
	}
	s.matches.put(updated)
	s.matches.touch()
	return current, updated, matchMutation(), nil
}

func (s *Store) checkMatchLocked(m models.Match) error {
	if _, ok := s.teams.get(m.HomeTeamID); !ok {
		return models.NewValidationError("homeTeamId", "team %q does not exist", m.HomeTeamID)
	}
	if _, ok := s.teams.get(m.AwayTeamID); !ok {
		return models.NewValidationError("awayTeamId", "team %q does not exist", m.AwayTeamID)
	}
	if m.HomeTeamID == m.AwayTeamID {
		return models.NewValidationError("awayTeamId", "a team cannot play itself")
	}
	if !m.Status.Valid() {
		return models.NewValidationError("status", "unknown status %q", m.Status)
	}
	if m.Finished() {
		if m.HomeScore == nil {
			return models.NewValidationError("homeScore", "required for a finished match")
		}
		if m.AwayScore == nil {
			return models.NewValidationError("awayScore", "required for a finished match")
		}
	} else if m.HomeScore != nil || m.AwayScore != nil {
		return models.NewValidationError("homeScore", "only a finished match has a score")
	}
	return nil
}

func (s *Store) RemoveMatch(ctx context.Context, id string) (Mutation, error) {
	release := s.acquire(kinds(models.KindMatches), nil)
	defer release()

	if _, ok := s.matches.get(id); !ok {
		return Mutation{}, models.NotFound(models.KindMatches, id)
	}
	var change Change
	change.delete(models.KindMatches, id)
	if err := s.persist(ctx, change); err != nil {
		return Mutation{}, err
	}
	s.matches.remove(id)
	s.matches.touch()
	return matchMutation(), nil
}

func (s *Store) RemoveAllMatches(ctx context.Context) (int, Mutation, error) {
	release := s.acquire(kinds(models.KindMatches), nil)
	defer release()

	if len(s.matches.items) == 0 {
		return 0, Mutation{}, nil
	}
	var change Change
	for id := range s.matches.items {
		change.delete(models.KindMatches, id)
	}
	if err := s.persist(ctx, change); err != nil {
		return 0, Mutation{}, err
	}
	n := s.matches.clear()
	s.matches.touch()
	return n, matchMutation(), nil
}
