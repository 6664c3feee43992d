package services

import (
	"context"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/store"
)

// SessionCounter reports live broadcast sessions. *broadcast.Hub satisfies it.
type SessionCounter interface {
	ClientCount() int
}

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	store    *store.Store
	sessions SessionCounter
}

func NewDashboardService(st *store.Store, sessions SessionCounter) DashboardService {
	return &dashboardService{store: st, sessions: sessions}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	league := s.store.League()
	clips, _ := s.store.ClipStats()

	stats := models.DashboardStats{
		Teams:   len(league.Teams.Items),
		Clubs:   len(s.store.Clubs().Items),
		Players: len(league.Players.Items),
		Clips:   clips.Stats,
	}
	for _, m := range league.Matches.Items {
		switch m.Status {
		case models.MatchStatusUpcoming:
			stats.MatchesUpcoming++
		case models.MatchStatusLive:
			stats.MatchesLive++
		case models.MatchStatusFinished:
			stats.MatchesFinished++
		}
	}
	if s.sessions != nil {
		stats.Sessions = s.sessions.ClientCount()
	}
	return stats, nil
}
