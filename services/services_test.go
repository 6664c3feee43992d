package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/league-portal/brackets"
	"github.com/Dosada05/league-portal/broadcast"
	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/storage"
	"github.com/Dosada05/league-portal/store"
)

type published struct {
	channel broadcast.Channel
	msgType string
	version uint64
	payload any
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakePublisher) Publish(channel broadcast.Channel, msgType string, version uint64, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{channel, msgType, version, payload})
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.msgType
	}
	return out
}

func (f *fakePublisher) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = nil
}

type fakeUploader struct {
	objects  map[string]string
	failNext bool
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string]string)}
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, r io.Reader) (*storage.UploadResult, error) {
	if u.failNext {
		u.failNext = false
		return nil, errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.objects[key] = string(data)
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	delete(u.objects, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

type fixture struct {
	store    *store.Store
	pub      *fakePublisher
	uploader *fakeUploader
	teams    TeamService
	clubs    ClubService
	players  PlayerService
	matches  MatchService
	clips    ClipService
	playoffs PlayoffService
	admin    AdminService
	table    StandingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(logger)
	pub := &fakePublisher{}
	up := newFakeUploader()
	n := NewNotifier(st, pub, logger)
	return &fixture{
		store:    st,
		pub:      pub,
		uploader: up,
		teams:    NewTeamService(st, n, up, logger),
		clubs:    NewClubService(st, n, up, logger),
		players:  NewPlayerService(st, n, logger),
		matches:  NewMatchService(st, n, brackets.NewRoundRobinGenerator(), logger),
		clips:    NewClipService(st, n, up, logger),
		playoffs: NewPlayoffService(st, n, brackets.NewSingleEliminationGenerator(), logger),
		admin:    NewAdminService(st, n, logger),
		table: NewStandingsService(st, models.Settings{
			SeasonName: "Temporada 2025", PointsWin: 3, PointsDraw: 1,
			Bands: models.Bands{ChampionMax: 1, PlayoffMax: 8},
		}),
	}
}

func (f *fixture) team(t *testing.T, name string) models.Team {
	t.Helper()
	team, err := f.teams.CreateTeam(context.Background(), CreateTeamInput{Name: name})
	require.NoError(t, err)
	return team
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
}

func TestCreateTeam_BroadcastsDerivedCollections(t *testing.T) {
	f := newFixture(t)
	f.team(t, "Atlético Norte")

	assert.Equal(t, []string{broadcast.TypeTeamsUpdate, broadcast.TypePlayersUpdate, broadcast.TypeClubsUpdate}, f.pub.types())
	teams := f.pub.msgs[0].payload.([]models.Team)
	require.Len(t, teams, 1)
	assert.Equal(t, "Atlético Norte", teams[0].Name)
	assert.Equal(t, uint64(1), f.pub.msgs[0].version)
}

func TestCreateTeam_InvalidInputEmitsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.teams.CreateTeam(context.Background(), CreateTeamInput{Name: "   "})
	requireField(t, err, "name")

	_, err = f.teams.CreateTeam(context.Background(), CreateTeamInput{Name: "Sur", ClubID: strPtr("missing")})
	requireField(t, err, "clubId")

	assert.Empty(t, f.pub.types())
}

func TestCreateTeam_DuplicateNameIsConflict(t *testing.T) {
	f := newFixture(t)
	f.team(t, "Real Centro")

	_, err := f.teams.CreateTeam(context.Background(), CreateTeamInput{Name: "real centro"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUpdateTeam_PartialUpdate(t *testing.T) {
	f := newFixture(t)
	club, err := f.clubs.CreateClub(context.Background(), CreateClubInput{Name: "Club Uno"})
	require.NoError(t, err)
	team, err := f.teams.CreateTeam(context.Background(), CreateTeamInput{Name: "Uno A", ClubID: &club.ID, Stadium: "Municipal"})
	require.NoError(t, err)

	updated, err := f.teams.UpdateTeam(context.Background(), team.ID, UpdateTeamInput{Founded: intPtr(1990)})
	require.NoError(t, err)
	assert.Equal(t, "Uno A", updated.Name)
	assert.Equal(t, "Municipal", updated.Stadium)
	assert.Equal(t, 1990, updated.Founded)
	require.NotNil(t, updated.ClubID)

	detached, err := f.teams.UpdateTeam(context.Background(), team.ID, UpdateTeamInput{ClubID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, detached.ClubID)

	_, err = f.teams.UpdateTeam(context.Background(), "missing", UpdateTeamInput{Name: strPtr("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdatePlayer_EmitsStatNotifications(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "Deportivo")
	player, err := f.players.CreatePlayer(context.Background(), CreatePlayerInput{
		Name: "Lucas", ShirtNumber: 9, Position: models.PositionStriker, TeamID: team.ID,
	})
	require.NoError(t, err)
	f.pub.reset()

	_, err = f.players.UpdatePlayer(context.Background(), player.ID, UpdatePlayerInput{Goals: intPtr(2), Assists: intPtr(1)})
	require.NoError(t, err)

	var stats []models.PlayerStatChange
	for _, m := range f.pub.msgs {
		if m.channel == broadcast.ChannelPlayerStatChanged {
			assert.Zero(t, m.version)
			stats = append(stats, m.payload.(models.PlayerStatChange))
		}
	}
	assert.Equal(t, []models.PlayerStatChange{
		{PlayerName: "Lucas", StatType: models.StatGoals, Value: 2},
		{PlayerName: "Lucas", StatType: models.StatAssists, Value: 1},
	}, stats)

	f.pub.reset()
	_, err = f.players.UpdatePlayer(context.Background(), player.ID, UpdatePlayerInput{Name: strPtr("Lucas M.")})
	require.NoError(t, err)
	assert.NotContains(t, f.pub.types(), broadcast.TypePlayerStatsChanged)
}

func TestCreatePlayer_Validation(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "Deportivo")
	ctx := context.Background()

	_, err := f.players.CreatePlayer(ctx, CreatePlayerInput{Name: "A", ShirtNumber: 1, Position: "Libero", TeamID: team.ID})
	requireField(t, err, "position")

	_, err = f.players.CreatePlayer(ctx, CreatePlayerInput{Name: "A", ShirtNumber: 1, Position: models.PositionGoalkeeper, TeamID: team.ID, Goals: -1})
	requireField(t, err, "goals")

	_, err = f.players.CreatePlayer(ctx, CreatePlayerInput{Name: "A", ShirtNumber: 1, Position: models.PositionGoalkeeper, TeamID: "nope"})
	requireField(t, err, "teamId")

	_, err = f.players.CreatePlayer(ctx, CreatePlayerInput{Name: "A", ShirtNumber: 1, Position: models.PositionGoalkeeper, TeamID: team.ID})
	require.NoError(t, err)
	_, err = f.players.CreatePlayer(ctx, CreatePlayerInput{Name: "B", ShirtNumber: 1, Position: models.PositionGoalkeeper, TeamID: team.ID})
	assert.ErrorIs(t, err, models.ErrConflict)

	snap, err := f.players.ListPlayers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
	_, err = f.players.ListPlayers(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateMatch_Validation(t *testing.T) {
	f := newFixture(t)
	a, b := f.team(t, "A"), f.team(t, "B")
	ctx := context.Background()

	_, err := f.matches.CreateMatch(ctx, CreateMatchInput{HomeTeamID: a.ID, AwayTeamID: a.ID, Date: "2025-03-01"})
	requireField(t, err, "awayTeamId")

	_, err = f.matches.CreateMatch(ctx, CreateMatchInput{HomeTeamID: a.ID, AwayTeamID: "ghost", Date: "2025-03-01"})
	requireField(t, err, "awayTeamId")

	_, err = f.matches.CreateMatch(ctx, CreateMatchInput{HomeTeamID: a.ID, AwayTeamID: b.ID, Date: "01/03/2025"})
	requireField(t, err, "date")

	m, err := f.matches.CreateMatch(ctx, CreateMatchInput{HomeTeamID: a.ID, AwayTeamID: b.ID, Date: "2025-03-01", Status: "scheduled"})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusUpcoming, m.Status)
	assert.Equal(t, 1, m.Matchday)

	finished := models.MatchStatusFinished
	m, err = f.matches.UpdateMatch(ctx, m.ID, UpdateMatchInput{Status: &finished, HomeScore: intPtr(2), AwayScore: intPtr(1)})
	require.NoError(t, err)
	assert.True(t, m.Finished())

	live := models.MatchStatusLive
	_, err = f.matches.UpdateMatch(ctx, m.ID, UpdateMatchInput{Status: &live})
	requireField(t, err, "status")
}

func TestGenerateFixtures_StoresCalendarAndSkipsRepeats(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"A", "B", "C", "D"} {
		f.team(t, name)
	}
	f.pub.reset()
	ctx := context.Background()

	res, err := f.matches.GenerateFixtures(ctx, GenerateFixturesInput{Legs: 2, StartDate: "2025-03-01", DaysBetween: 7, Time: "18:30"})
	require.NoError(t, err)
	assert.Equal(t, 12, res.Created)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, []string{broadcast.TypeMatchesUpdate}, f.pub.types())

	again, err := f.matches.GenerateFixtures(ctx, GenerateFixturesInput{Legs: 2, StartDate: "2025-03-01", DaysBetween: 7})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 12, again.Skipped)
	assert.Len(t, f.pub.types(), 1, "nothing stored, nothing broadcast")

	n, err := f.matches.DeleteAllMatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestGenerateFixtures_NeedsTwoTeams(t *testing.T) {
	f := newFixture(t)
	f.team(t, "Solo")
	_, err := f.matches.GenerateFixtures(context.Background(), GenerateFixturesInput{StartDate: "2025-03-01"})
	requireField(t, err, "teamIds")
}

func TestDeleteTeam_BroadcastsCascade(t *testing.T) {
	f := newFixture(t)
	a, b := f.team(t, "A"), f.team(t, "B")
	ctx := context.Background()
	_, err := f.players.CreatePlayer(ctx, CreatePlayerInput{Name: "P", ShirtNumber: 1, Position: models.PositionGoalkeeper, TeamID: a.ID})
	require.NoError(t, err)
	_, err = f.matches.CreateMatch(ctx, CreateMatchInput{HomeTeamID: a.ID, AwayTeamID: b.ID, Date: "2025-03-01"})
	require.NoError(t, err)
	f.pub.reset()

	cascade, err := f.teams.DeleteTeam(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, cascade.PlayerIDs, 1)
	assert.Len(t, cascade.MatchIDs, 1)
	assert.ElementsMatch(t, []string{
		broadcast.TypeTeamsUpdate, broadcast.TypePlayersUpdate, broadcast.TypeClubsUpdate, broadcast.TypeMatchesUpdate,
	}, f.pub.types())

	_, err = f.teams.DeleteTeam(ctx, a.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUploadLogo_ReplacesPreviousObject(t *testing.T) {
	f := newFixture(t)
	club, err := f.clubs.CreateClub(context.Background(), CreateClubInput{Name: "Club Logo"})
	require.NoError(t, err)

	first, err := f.clubs.UploadLogo(context.Background(), club.ID, FileInput{Filename: "a.png", Size: 3, Reader: strings.NewReader("png")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.LogoURL, "https://cdn.test/logos/clubs/"))
	assert.Len(t, f.uploader.objects, 1)

	second, err := f.clubs.UploadLogo(context.Background(), club.ID, FileInput{Filename: "b.webp", Size: 4, Reader: strings.NewReader("webp")})
	require.NoError(t, err)
	assert.NotEqual(t, first.LogoKey, second.LogoKey)
	assert.Len(t, f.uploader.objects, 1)
	assert.Contains(t, f.uploader.objects, second.LogoKey)

	_, err = f.clubs.UploadLogo(context.Background(), club.ID, FileInput{Filename: "c.bmp", Size: 1, Reader: strings.NewReader("b")})
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	_, err = f.clubs.UploadLogo(context.Background(), club.ID, FileInput{Filename: "c.png", Size: MaxImageSize + 1, Reader: strings.NewReader("b")})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func uploadClip(t *testing.T, f *fixture, title, category string) models.Clip {
	t.Helper()
	clip, err := f.clips.UploadClip(context.Background(),
		UploadClipInput{Title: title, Description: "d", Category: category, ClubName: "Club"},
		FileInput{Filename: "goal.mp4", Size: 5, Reader: bytes.NewReader([]byte("video"))},
	)
	require.NoError(t, err)
	return clip
}

func TestUploadClip_StoresAndBroadcastsStats(t *testing.T) {
	f := newFixture(t)
	clip := uploadClip(t, f, "Golazo", "goles")

	assert.Equal(t, "video/mp4", clip.ContentType)
	assert.Equal(t, "video", f.uploader.objects[clip.StorageKey])
	require.Equal(t, []string{broadcast.TypeStatsUpdate}, f.pub.types())
	stats := f.pub.msgs[0].payload.(models.ClipStatsSnapshot)
	assert.Equal(t, 1, stats.Stats.TotalClips)

	f.uploader.failNext = true
	_, err := f.clips.UploadClip(context.Background(),
		UploadClipInput{Title: "x", Description: "d", Category: "c", ClubName: "Club"},
		FileInput{Filename: "x.webm", Size: 1, Reader: strings.NewReader("x")},
	)
	assert.ErrorIs(t, err, ErrUploadFailed)

	_, err = f.clips.UploadClip(context.Background(),
		UploadClipInput{Title: "x", Description: "d", Category: "c", ClubName: "Club"},
		FileInput{Filename: "x.exe", Size: 1, Reader: strings.NewReader("x")},
	)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	require.NoError(t, f.clips.DeleteClip(context.Background(), clip.ID))
	assert.Empty(t, f.uploader.objects)
}

func TestListClips_Paginates(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 15; i++ {
		category := "goles"
		if i%5 == 0 {
			category = "paradas"
		}
		uploadClip(t, f, fmt.Sprintf("clip %d", i), category)
	}
	ctx := context.Background()

	page, err := f.clips.ListClips(ctx, ClipQuery{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Clips, ClipsPerPage)
	assert.True(t, page.HasMore)
	assert.Equal(t, 15, page.Total)

	page, err = f.clips.ListClips(ctx, ClipQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Clips, 3)
	assert.False(t, page.HasMore)

	page, err = f.clips.ListClips(ctx, ClipQuery{Page: 1, Category: "Paradas"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = f.clips.ListClips(ctx, ClipQuery{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Clips)
}

func TestLikeAndView_IncrementAndBroadcast(t *testing.T) {
	f := newFixture(t)
	clip := uploadClip(t, f, "Golazo", "goles")
	f.pub.reset()
	ctx := context.Background()

	liked, likedAt, err := f.clips.Like(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked.Likes)
	viewed, viewedAt, err := f.clips.RecordView(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), viewed.Views)

	require.Len(t, f.pub.msgs, 2)
	assert.Less(t, f.pub.msgs[0].version, f.pub.msgs[1].version)
	assert.Equal(t, f.pub.msgs[0].version, likedAt)
	assert.Equal(t, f.pub.msgs[1].version, viewedAt)

	_, _, err = f.clips.Like(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStandingsAndLeaderboard(t *testing.T) {
	f := newFixture(t)
	a, b := f.team(t, "A"), f.team(t, "B")
	ctx := context.Background()

	_, err := f.matches.CreateMatch(ctx, CreateMatchInput{HomeTeamID: a.ID, AwayTeamID: b.ID, Date: "2025-03-01", Status: models.MatchStatusFinished, HomeScore: intPtr(2), AwayScore: intPtr(1)})
	require.NoError(t, err)
	_, err = f.matches.CreateMatch(ctx, CreateMatchInput{HomeTeamID: b.ID, AwayTeamID: a.ID, Date: "2025-03-08", Matchday: 2, Status: models.MatchStatusFinished, HomeScore: intPtr(0), AwayScore: intPtr(0)})
	require.NoError(t, err)

	rows, version, err := f.table.Standings(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].TeamName)
	assert.Equal(t, 4, rows[0].Points)
	assert.Equal(t, 1, rows[1].Points)
	assert.NotZero(t, version)

	_, err = f.players.CreatePlayer(ctx, CreatePlayerInput{Name: "Nueve", ShirtNumber: 9, Position: models.PositionStriker, TeamID: a.ID, Goals: 2})
	require.NoError(t, err)
	lb, err := f.table.Leaderboard(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, lb.Entries, 1)
	assert.Equal(t, 2, lb.Totals.FinishedMatches)
	assert.Equal(t, 1.0, lb.Totals.AverageGoalsPerMatch)

	_, err = f.table.Leaderboard(ctx, "yellowCards", 5)
	assert.Error(t, err)
}

func TestLeaderboard_NonPositiveLimitUsesDefault(t *testing.T) {
	f := newFixture(t)
	team := f.team(t, "A")
	ctx := context.Background()
	for i := 1; i <= DefaultLeaderboardLimit+2; i++ {
		_, err := f.players.CreatePlayer(ctx, CreatePlayerInput{
			Name: fmt.Sprintf("Jugador %d", i), ShirtNumber: i, Position: models.PositionStriker, TeamID: team.ID, Goals: i,
		})
		require.NoError(t, err)
	}

	for _, limit := range []int{0, -5} {
		lb, err := f.table.Leaderboard(ctx, "goals", limit)
		require.NoError(t, err)
		assert.Len(t, lb.Entries, DefaultLeaderboardLimit, "limit %d", limit)
	}
	lb, err := f.table.Leaderboard(ctx, "goals", 3)
	require.NoError(t, err)
	assert.Len(t, lb.Entries, 3)
}

func TestPlayoffs_DrawAndAdvance(t *testing.T) {
	f := newFixture(t)
	ids := make([]string, 4)
	for i := range ids {
		ids[i] = f.team(t, fmt.Sprintf("T%d", i+1)).ID
	}
	ctx := context.Background()

	_, err := f.playoffs.CreateBracket(ctx, CreateBracketInput{TeamIDs: ids[:3]})
	requireField(t, err, "teamIds")

	bracket, err := f.playoffs.CreateBracket(ctx, CreateBracketInput{TeamIDs: ids})
	require.NoError(t, err)
	assert.Len(t, bracket.Matches, 3)

	_, err = f.playoffs.RecordResult(ctx, "R1M1", PlayoffResultInput{HomeScore: intPtr(1), AwayScore: intPtr(1)})
	requireField(t, err, "awayScore")

	bracket, err = f.playoffs.RecordResult(ctx, "R1M1", PlayoffResultInput{HomeScore: intPtr(3), AwayScore: intPtr(0)})
	require.NoError(t, err)
	require.NotNil(t, bracket.Matches[2].HomeTeamID)
	assert.Equal(t, ids[0], *bracket.Matches[2].HomeTeamID)

	got, _, err := f.playoffs.GetBracket(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	n, err := f.playoffs.DeleteBracket(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, _, err = f.playoffs.GetBracket(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCleanup_BroadcastsEveryLeagueChannel(t *testing.T) {
	f := newFixture(t)
	f.team(t, "A")
	uploadClip(t, f, "keep", "goles")
	f.pub.reset()

	res, err := f.admin.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Teams)
	assert.Subset(t, f.pub.types(), []string{broadcast.TypeTeamsUpdate, broadcast.TypeClubsUpdate, broadcast.TypePlayersUpdate, broadcast.TypeMatchesUpdate})

	stats, _, err := f.clips.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Stats.TotalClips)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.team(t, "A")
	d := NewDashboardService(f.store, nil)
	stats, err := d.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Teams)
	assert.Zero(t, stats.Sessions)
}

func TestAuth_LoginAndParse(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	auth := NewAuthService("signing-key", string(hash))
	ctx := context.Background()

	_, err = auth.Login(ctx, LoginInput{Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	token, err := auth.Login(ctx, LoginInput{Password: "s3cret"})
	require.NoError(t, err)
	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = NewAuthService("other-key", string(hash)).ParseToken(token)
	assert.ErrorIs(t, err, ErrAuthInvalidToken)

	disabled := NewAuthService("", "")
	assert.False(t, disabled.Enabled())
	_, err = disabled.Login(ctx, LoginInput{Password: "s3cret"})
	assert.ErrorIs(t, err, ErrAuthDisabled)
}
