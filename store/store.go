package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/league-portal/models"
)

var (
	ErrPersistFailed = errors.New("failed to persist change")
	ErrLoadFailed    = errors.New("failed to load persisted entities")
)

// Mutation lists every collection whose snapshot changed, derived
// collections included.
type Mutation struct {
	Kinds []models.Kind
}

func (m Mutation) Has(kind models.Kind) bool {
	return slices.Contains(m.Kinds, kind)
}

func mutated(kinds ...models.Kind) Mutation {
	return Mutation{Kinds: kinds}
}

// Store is the authoritative in-process copy of every collection. Writes to
// a kind are serialized by that kind's lock; multi-kind writes take locks in
// models.AllKinds order.
type Store struct {
	clubs    *collection[models.Club]
	teams    *collection[models.Team]
	players  *collection[models.Player]
	matches  *collection[models.Match]
	clips    *collection[models.Clip]
	playoffs *collection[models.Bracket]

	persister Persister
	logger    *slog.Logger
	now       func() time.Time
	epoch     string
}

type Option func(*Store)

// WithPersister makes every mutation durable before it becomes visible.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		clubs: newCollection(models.KindClubs, func(a, b models.Club) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}),
		teams: newCollection(models.KindTeams, func(a, b models.Team) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}),
		players: newCollection(models.KindPlayers, func(a, b models.Player) bool {
			if a.Position.Rank() != b.Position.Rank() {
				return a.Position.Rank() < b.Position.Rank()
			}
			if a.ShirtNumber != b.ShirtNumber {
				return a.ShirtNumber < b.ShirtNumber
			}
			return a.Name < b.Name
		}),
		matches: newCollection(models.KindMatches, func(a, b models.Match) bool {
			if a.Matchday != b.Matchday {
				return a.Matchday < b.Matchday
			}
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return a.Time < b.Time
		}),
		clips: newCollection(models.KindClips, func(a, b models.Clip) bool {
			return a.UploadDate.After(b.UploadDate)
		}),
		playoffs: newCollection[models.Bracket](models.KindPlayoffs, nil),
		logger:   logger,
		now:      time.Now,
		epoch:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Epoch names this run of the store. Collection versions restart whenever
// the process does, so a version is only comparable within one epoch.
func (s *Store) Epoch() string {
	return s.epoch
}

func (s *Store) mutex(kind models.Kind) *sync.RWMutex {
	switch kind {
	case models.KindClubs:
		return &s.clubs.mu
	case models.KindTeams:
		return &s.teams.mu
	case models.KindPlayers:
		return &s.players.mu
	case models.KindMatches:
		return &s.matches.mu
	case models.KindClips:
		return &s.clips.mu
	case models.KindPlayoffs:
		return &s.playoffs.mu
	}
	panic(fmt.Sprintf("store: unknown kind %q", kind))
}

// acquire write-locks writes and read-locks reads, always in
// models.AllKinds order, and returns the matching release.
func (s *Store) acquire(writes, reads []models.Kind) func() {
	held := make([]func(), 0, len(writes)+len(reads))
	for _, kind := range models.AllKinds {
		mu := s.mutex(kind)
		switch {
		case slices.Contains(writes, kind):
			mu.Lock()
			held = append(held, mu.Unlock)
		case slices.Contains(reads, kind):
			mu.RLock()
			held = append(held, mu.RUnlock)
		}
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
}

func kinds(k ...models.Kind) []models.Kind { return k }

func (s *Store) persist(ctx context.Context, change Change) error {
	if s.persister == nil || change.Empty() {
		return nil
	}
	if err := s.persister.Apply(ctx, change); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

// Load hydrates the store from its persister. It must run before the store
// serves traffic.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	raw, err := s.persister.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	release := s.acquire(models.AllKinds, nil)
	defer release()

	for kind, docs := range raw {
		var n int
		switch kind {
		case models.KindClubs:
			n, err = hydrate(s.clubs, docs)
		case models.KindTeams:
			n, err = hydrate(s.teams, docs)
		case models.KindPlayers:
			n, err = hydrate(s.players, docs)
		case models.KindMatches:
			n, err = hydrate(s.matches, docs)
		case models.KindClips:
			n, err = hydrate(s.clips, docs)
		case models.KindPlayoffs:
			n, err = hydrate(s.playoffs, docs)
		default:
			s.logger.Warn("skipping unknown persisted kind", slog.String("kind", string(kind)), slog.Int("count", len(docs)))
			continue
		}
		if err != nil {
			return fmt.Errorf("%w (%s): %w", ErrLoadFailed, kind, err)
		}
		s.logger.Info("collection loaded", slog.String("kind", string(kind)), slog.Int("count", n))
	}
	return nil
}

func hydrate[T Entity](c *collection[T], docs []json.RawMessage) (int, error) {
	for _, doc := range docs {
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			return 0, err
		}
		c.put(item)
	}
	c.touch()
	return len(docs), nil
}

// Clear removes every team, club, player, match and playoff bracket as one
// change. Clips are kept.
func (s *Store) Clear(ctx context.Context) (models.CleanupResult, Mutation, error) {
	written := kinds(models.KindClubs, models.KindTeams, models.KindPlayers, models.KindMatches, models.KindPlayoffs)
	release := s.acquire(written, nil)
	defer release()

	var change Change
	for id := range s.clubs.items {
		change.delete(models.KindClubs, id)
	}
	for id := range s.teams.items {
		change.delete(models.KindTeams, id)
	}
	for id := range s.players.items {
		change.delete(models.KindPlayers, id)
	}
	for id := range s.matches.items {
		change.delete(models.KindMatches, id)
	}
	for id := range s.playoffs.items {
		change.delete(models.KindPlayoffs, id)
	}
	if err := s.persist(ctx, change); err != nil {
		return models.CleanupResult{}, Mutation{}, err
	}

	result := models.CleanupResult{
		Clubs:    s.clubs.clear(),
		Teams:    s.teams.clear(),
		Players:  s.players.clear(),
		Matches:  s.matches.clear(),
		Brackets: s.playoffs.clear(),
	}
	for _, kind := range written {
		s.collectionVersionBump(kind)
	}
	return result, mutated(written...), nil
}

// collectionVersionBump must be called with kind write-locked.
func (s *Store) collectionVersionBump(kind models.Kind) {
	switch kind {
	case models.KindClubs:
		s.clubs.touch()
	case models.KindTeams:
		s.teams.touch()
	case models.KindPlayers:
		s.players.touch()
	case models.KindMatches:
		s.matches.touch()
	case models.KindClips:
		s.clips.touch()
	case models.KindPlayoffs:
		s.playoffs.touch()
	}
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return models.NewValidationError("id", "must not be empty")
	}
	return nil
}
