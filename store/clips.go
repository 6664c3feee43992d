package store

import (
	"context"
	"fmt"

	"github.com/Dosada05/league-portal/models"
)

type Counter string

const (
	CounterViews Counter = "views"
	CounterLikes Counter = "likes"
)

// Increment is a counter write and the clips version it produced.
type Increment struct {
	Clip    models.Clip
	Version uint64
}

func clipMutation() Mutation {
	return mutated(models.KindClips)
}

func (s *Store) Clips() Snapshot[models.Clip] {
	release := s.acquire(nil, kinds(models.KindClips))
	defer release()
	return s.clips.snapshot()
}

func (s *Store) Clip(id string) (models.Clip, error) {
	release := s.acquire(nil, kinds(models.KindClips))
	defer release()
	clip, ok := s.clips.get(id)
	if !ok {
		return models.Clip{}, models.NotFound(models.KindClips, id)
	}
	return clip, nil
}

// ClipStats aggregates counters over all clips under one read lock, so the
// totals always agree with the per-clip counters.
func (s *Store) ClipStats() (models.ClipStatsSnapshot, uint64) {
	release := s.acquire(nil, kinds(models.KindClips))
	defer release()

	clips := s.clips.list()
	out := models.ClipStatsSnapshot{Counters: make([]models.ClipCounter, 0, len(clips))}
	out.Stats.TotalClips = len(clips)
	for _, c := range clips {
		out.Stats.TotalViews += c.Views
		out.Stats.TotalLikes += c.Likes
		out.Counters = append(out.Counters, models.ClipCounter{ID: c.ID, Views: c.Views, Likes: c.Likes})
	}
	return out, s.clips.version
}

func (s *Store) CreateClip(ctx context.Context, clip models.Clip) (models.Clip, Mutation, error) {
	if err := requireID(clip.ID); err != nil {
		return models.Clip{}, Mutation{}, err
	}
	release := s.acquire(kinds(models.KindClips), nil)
	defer release()

	if _, exists := s.clips.get(clip.ID); exists {
		return models.Clip{}, Mutation{}, models.NewConflictError("id", "clip %q already exists", clip.ID)
	}
	if clip.UploadDate.IsZero() {
		clip.UploadDate = s.now().UTC()
	}
	var change Change
	change.upsert(models.KindClips, clip)
	if err := s.persist(ctx, change); err != nil {
		return models.Clip{}, Mutation{}, err
	}
	s.clips.put(clip)
	s.clips.touch()
	return clip, clipMutation(), nil
}

// IncrementClip adds one to a counter. Counters only ever move up here.
func (s *Store) IncrementClip(ctx context.Context, id string, counter Counter) (Increment, Mutation, error) {
	release := s.acquire(kinds(models.KindClips), nil)
	defer release()

	clip, ok := s.clips.get(id)
	if !ok {
		return Increment{}, Mutation{}, models.NotFound(models.KindClips, id)
	}
	switch counter {
	case CounterViews:
		clip.Views++
	case CounterLikes:
		clip.Likes++
	default:
		return Increment{}, Mutation{}, fmt.Errorf("store: unknown clip counter %q", counter)
	}

	var change Change
	change.upsert(models.KindClips, clip)
	if err := s.persist(ctx, change); err != nil {
		return Increment{}, Mutation{}, err
	}
	s.clips.put(clip)
	s.clips.touch()
	return Increment{Clip: clip, Version: s.clips.version}, clipMutation(), nil
}

func (s *Store) RemoveClip(ctx context.Context, id string) (models.Clip, Mutation, error) {
	release := s.acquire(kinds(models.KindClips), nil)
	defer release()

	clip, ok := s.clips.get(id)
	if !ok {
		return models.Clip{}, Mutation{}, models.NotFound(models.KindClips, id)
	}
	var change Change
	change.delete(models.KindClips, id)
	if err := s.persist(ctx, change); err != nil {
		return models.Clip{}, Mutation{}, err
	}
	s.clips.remove(id)
	s.clips.touch()
	return clip, clipMutation(), nil
}
