package services

import (
	"context"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/standings"
	"github.com/Dosada05/league-portal/store"
)

const DefaultLeaderboardLimit = 10

type StandingsService interface {
	// Standings returns the table with the version of the view it was
	// computed from.
	Standings(ctx context.Context) ([]models.StandingsRow, uint64, error)
	Leaderboard(ctx context.Context, metric string, limit int) (LeaderboardResult, error)
	Settings(ctx context.Context) models.Settings
}

type LeaderboardResult struct {
	Metric  standings.Metric          `json:"metric"`
	Entries []models.LeaderboardEntry `json:"entries"`
	Totals  models.LeaderboardTotals  `json:"totals"`
}

type standingsService struct {
	store    *store.Store
	settings models.Settings
	rules    standings.Rules
}

func NewStandingsService(st *store.Store, settings models.Settings) StandingsService {
	return &standingsService{store: st, settings: settings, rules: standings.RulesFromSettings(settings)}
}

func (s *standingsService) Standings(ctx context.Context) ([]models.StandingsRow, uint64, error) {
	league := s.store.League()
	rows := standings.Compute(league.Teams.Items, league.Matches.Items, s.rules)
	return rows, league.Version(), nil
}

func (s *standingsService) Leaderboard(ctx context.Context, metric string, limit int) (LeaderboardResult, error) {
	m, err := standings.ParseMetric(metric)
	if err != nil {
		return LeaderboardResult{}, err
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	league := s.store.League()
	entries, err := standings.Leaderboard(league.Players.Items, m, limit)
	if err != nil {
		return LeaderboardResult{}, err
	}
	return LeaderboardResult{
		Metric:  m,
		Entries: entries,
		Totals:  standings.Totals(league.Players.Items, league.Matches.Items),
	}, nil
}

func (s *standingsService) Settings(ctx context.Context) models.Settings {
	return s.settings
}
