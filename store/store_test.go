package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-portal/models"
)

type fakePersister struct {
	mu      sync.Mutex
	changes []Change
	fail    error
	docs    map[models.Kind][]json.RawMessage
}

func (f *fakePersister) Apply(_ context.Context, change Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.changes = append(f.changes, change)
	return nil
}

func (f *fakePersister) LoadAll(context.Context) (map[models.Kind][]json.RawMessage, error) {
	return f.docs, nil
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func intPtr(v int) *int { return &v }

func seedTeams(t *testing.T, s *Store, names ...string) []models.Team {
	t.Helper()
	out := make([]models.Team, 0, len(names))
	for _, name := range names {
		team, _, err := s.CreateTeam(context.Background(), models.Team{ID: "team-" + name, Name: name})
		require.NoError(t, err)
		out = append(out, team)
	}
	return out
}

func TestCreateTeam_RejectsDuplicateName(t *testing.T) {
	s := newTestStore(t)
	seedTeams(t, s, "Rayos X FC")

	_, _, err := s.CreateTeam(context.Background(), models.Team{ID: "other", Name: "rayos x fc"})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Len(t, s.Teams().Items, 1)
}

func TestCreateTeam_UnknownClubIsValidationError(t *testing.T) {
	s := newTestStore(t)
	club := "missing"

	_, _, err := s.CreateTeam(context.Background(), models.Team{ID: "t1", Name: "A", ClubID: &club})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "clubId", verr.Field)
	assert.Empty(t, s.Teams().Items)
}

func TestUpdateTeam_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.UpdateTeam(context.Background(), "nope", func(*models.Team) error { return nil })
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreatePlayer_ReferentialAndShirtChecks(t *testing.T) {
	s := newTestStore(t)
	teams := seedTeams(t, s, "A")
	ctx := context.Background()

	_, _, err := s.CreatePlayer(ctx, models.Player{ID: "p0", Name: "Ghost", TeamID: "nope", ShirtNumber: 9})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "teamId", verr.Field)

	_, _, err = s.CreatePlayer(ctx, models.Player{ID: "p1", Name: "Uno", TeamID: teams[0].ID, ShirtNumber: 9})
	require.NoError(t, err)

	_, _, err = s.CreatePlayer(ctx, models.Player{ID: "p2", Name: "Dos", TeamID: teams[0].ID, ShirtNumber: 9})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "shirtNumber", verr.Field)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestMatch_ReferencesAndFinishedNeverRegresses(t *testing.T) {
	s := newTestStore(t)
	teams := seedTeams(t, s, "A", "B")
	ctx := context.Background()

	_, _, err := s.CreateMatch(ctx, models.Match{ID: "m0", HomeTeamID: teams[0].ID, AwayTeamID: "ghost", Matchday: 1, Status: models.MatchStatusUpcoming})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "awayTeamId", verr.Field)

	_, _, err = s.CreateMatch(ctx, models.Match{ID: "m1", HomeTeamID: teams[0].ID, AwayTeamID: teams[0].ID, Matchday: 1, Status: models.MatchStatusUpcoming})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "awayTeamId", verr.Field)

	_, _, err = s.CreateMatch(ctx, models.Match{
		ID: "m2", HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 1,
		Status: models.MatchStatusFinished, HomeScore: intPtr(2), AwayScore: intPtr(1),
	})
	require.NoError(t, err)

	_, _, _, err = s.UpdateMatch(ctx, "m2", func(m *models.Match) error {
		m.Status = models.MatchStatusLive
		m.HomeScore, m.AwayScore = nil, nil
		return nil
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	stored, err := s.Match("m2")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, stored.Status)
}

func TestRemoveTeam_CascadesPlayersAndMatches(t *testing.T) {
	s := newTestStore(t)
	teams := seedTeams(t, s, "A", "B", "C")
	ctx := context.Background()

	_, _, err := s.CreatePlayer(ctx, models.Player{ID: "pa", Name: "Alpha", TeamID: teams[0].ID, ShirtNumber: 1})
	require.NoError(t, err)
	_, _, err = s.CreatePlayer(ctx, models.Player{ID: "pb", Name: "Beta", TeamID: teams[1].ID, ShirtNumber: 1})
	require.NoError(t, err)
	_, _, err = s.CreateMatch(ctx, models.Match{ID: "ab", HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 1, Status: models.MatchStatusUpcoming})
	require.NoError(t, err)
	_, _, err = s.CreateMatch(ctx, models.Match{ID: "bc", HomeTeamID: teams[1].ID, AwayTeamID: teams[2].ID, Matchday: 1, Status: models.MatchStatusUpcoming})
	require.NoError(t, err)

	cascade, mutation, err := s.RemoveTeam(ctx, teams[0].ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"pa"}, cascade.PlayerIDs)
	assert.Equal(t, []string{"ab"}, cascade.MatchIDs)
	assert.True(t, mutation.Has(models.KindTeams))
	assert.True(t, mutation.Has(models.KindPlayers))
	assert.True(t, mutation.Has(models.KindMatches))

	assert.Len(t, s.Teams().Items, 2)
	assert.Len(t, s.Players().Items, 1)
	matches := s.Matches().Items
	require.Len(t, matches, 1)
	assert.Equal(t, "bc", matches[0].ID)
}

func TestRemoveTeam_FailedPersistLeavesEverythingInPlace(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, WithPersister(p))
	teams := seedTeams(t, s, "A", "B")
	ctx := context.Background()
	_, _, err := s.CreatePlayer(ctx, models.Player{ID: "pa", Name: "Alpha", TeamID: teams[0].ID, ShirtNumber: 1})
	require.NoError(t, err)
	_, _, err = s.CreateMatch(ctx, models.Match{ID: "ab", HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 1, Status: models.MatchStatusUpcoming})
	require.NoError(t, err)

	before := s.Teams().Version
	p.fail = errors.New("connection reset")

	_, _, err = s.RemoveTeam(ctx, teams[0].ID)
	require.ErrorIs(t, err, ErrPersistFailed)

	assert.Len(t, s.Teams().Items, 2)
	assert.Len(t, s.Players().Items, 1)
	assert.Len(t, s.Matches().Items, 1)
	assert.Equal(t, before, s.Teams().Version)
}

func TestRemoveTeam_PersistsCascadeAsOneChange(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, WithPersister(p))
	teams := seedTeams(t, s, "A", "B")
	ctx := context.Background()
	_, _, err := s.CreatePlayer(ctx, models.Player{ID: "pa", Name: "Alpha", TeamID: teams[0].ID, ShirtNumber: 1})
	require.NoError(t, err)
	_, _, err = s.CreateMatch(ctx, models.Match{ID: "ab", HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 1, Status: models.MatchStatusUpcoming})
	require.NoError(t, err)
	p.changes = nil

	_, _, err = s.RemoveTeam(ctx, teams[0].ID)
	require.NoError(t, err)

	require.Len(t, p.changes, 1)
	assert.ElementsMatch(t, []Ref{
		{Kind: models.KindTeams, ID: teams[0].ID},
		{Kind: models.KindPlayers, ID: "pa"},
		{Kind: models.KindMatches, ID: "ab"},
	}, p.changes[0].Deletes)
}

func TestClubs_PlayerCountIsDerived(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	club, _, err := s.CreateClub(ctx, models.Club{ID: "c1", Name: "Club Uno"})
	require.NoError(t, err)
	team, _, err := s.CreateTeam(ctx, models.Team{ID: "t1", Name: "Uno", ClubID: &club.ID})
	require.NoError(t, err)

	v0 := s.Clubs().Version
	_, _, err = s.CreatePlayer(ctx, models.Player{ID: "p1", Name: "X", TeamID: team.ID, ShirtNumber: 7})
	require.NoError(t, err)

	snap := s.Clubs()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].PlayerCount)
	assert.Greater(t, snap.Version, v0)
}

func TestRemoveClub_DetachesTeams(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	club, _, err := s.CreateClub(ctx, models.Club{ID: "c1", Name: "Club Uno"})
	require.NoError(t, err)
	_, _, err = s.CreateTeam(ctx, models.Team{ID: "t1", Name: "Uno", ClubID: &club.ID})
	require.NoError(t, err)

	_, mutation, err := s.RemoveClub(ctx, club.ID)
	require.NoError(t, err)
	assert.True(t, mutation.Has(models.KindTeams))

	team, err := s.Team("t1")
	require.NoError(t, err)
	assert.Nil(t, team.ClubID)
}

func TestCreateMatches_SkipsDuplicateFixtures(t *testing.T) {
	s := newTestStore(t)
	teams := seedTeams(t, s, "A", "B")
	ctx := context.Background()
	fixture := models.Match{HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Date: "2025-03-01", Matchday: 1, Status: models.MatchStatusUpcoming}

	first := fixture
	first.ID = "m1"
	_, _, err := s.CreateMatch(ctx, first)
	require.NoError(t, err)

	dup, fresh, repeat := fixture, fixture, fixture
	dup.ID = "m2"
	fresh.ID, fresh.Matchday, fresh.Date = "m3", 2, "2025-03-08"
	repeat.ID, repeat.Matchday, repeat.Date = "m4", 2, "2025-03-08"

	created, skipped, mutation, err := s.CreateMatches(ctx, []models.Match{dup, fresh, repeat})
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, "m3", created[0].ID)
	assert.Equal(t, 2, skipped)
	assert.True(t, mutation.Has(models.KindMatches))
	assert.Len(t, s.Matches().Items, 2)
}

func TestIncrementClip_StatsAgree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _, err := s.CreateClip(ctx, models.Clip{ID: "c1", Title: "Golazo", Likes: 10})
	require.NoError(t, err)

	liked, _, err := s.IncrementClip(ctx, "c1", CounterLikes)
	require.NoError(t, err)
	assert.EqualValues(t, 11, liked.Clip.Likes)
	assert.EqualValues(t, 2, liked.Version)

	viewed, _, err := s.IncrementClip(ctx, "c1", CounterViews)
	require.NoError(t, err)
	assert.EqualValues(t, 3, viewed.Version)

	stats, version := s.ClipStats()
	assert.Equal(t, 1, stats.Stats.TotalClips)
	assert.EqualValues(t, 1, stats.Stats.TotalViews)
	assert.EqualValues(t, 11, stats.Stats.TotalLikes)
	assert.EqualValues(t, 3, version)

	_, _, err = s.IncrementClip(ctx, "missing", CounterViews)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEpoch_DiffersPerStore(t *testing.T) {
	a, b := newTestStore(t), newTestStore(t)
	assert.NotEmpty(t, a.Epoch())
	assert.Equal(t, a.Epoch(), a.Epoch())
	assert.NotEqual(t, a.Epoch(), b.Epoch())
}

func TestConcurrentWritersNeverInterleave(t *testing.T) {
	s := newTestStore(t)
	teams := seedTeams(t, s, "A", "B")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, _ = s.CreatePlayer(ctx, models.Player{
				ID: "p" + string(rune('A'+n%26)) + string(rune('a'+n/26)), Name: "x",
				TeamID: teams[n%2].ID, ShirtNumber: n,
			})
		}(i)
	}
	wg.Wait()

	snap := s.Players()
	assert.Len(t, snap.Items, 50)
	assert.EqualValues(t, 50+s.Teams().Version, snap.Version)
}

func TestLoad_HydratesFromPersister(t *testing.T) {
	team, err := json.Marshal(models.Team{ID: "t1", Name: "A"})
	require.NoError(t, err)
	p := &fakePersister{docs: map[models.Kind][]json.RawMessage{models.KindTeams: {team}}}
	s := newTestStore(t, WithPersister(p))

	require.NoError(t, s.Load(context.Background()))

	snap := s.Teams()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "A", snap.Items[0].Name)
	assert.EqualValues(t, 1, snap.Version)
}

func TestClear_RemovesLeagueButKeepsClips(t *testing.T) {
	s := newTestStore(t)
	teams := seedTeams(t, s, "A", "B")
	ctx := context.Background()
	_, _, err := s.CreateMatch(ctx, models.Match{ID: "m1", HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 1, Status: models.MatchStatusUpcoming})
	require.NoError(t, err)
	_, _, err = s.CreateClip(ctx, models.Clip{ID: "c1", Title: "x"})
	require.NoError(t, err)

	result, _, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Teams)
	assert.Equal(t, 1, result.Matches)
	assert.Empty(t, s.Teams().Items)
	assert.Len(t, s.Clips().Items, 1)
}
