package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/store"
)

type AdminService interface {
	// Cleanup removes every team, club, player, match and playoff bracket.
	// Clips are kept.
	Cleanup(ctx context.Context) (models.CleanupResult, error)
}

type adminService struct {
	store    *store.Store
	notifier *Notifier
	logger   *slog.Logger
}

func NewAdminService(st *store.Store, notifier *Notifier, logger *slog.Logger) AdminService {
	return &adminService{store: st, notifier: notifier, logger: logger}
}

func (s *adminService) Cleanup(ctx context.Context) (models.CleanupResult, error) {
	result, mutation, err := s.store.Clear(ctx)
	recordMutation(models.KindTeams, "cleanup", err)
	if err != nil {
		return models.CleanupResult{}, opError(ErrDeleteFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Warn("league data cleared",
		slog.Int("teams", result.Teams),
		slog.Int("clubs", result.Clubs),
		slog.Int("players", result.Players),
		slog.Int("matches", result.Matches),
		slog.Int("brackets", result.Brackets),
	)
	return result, nil
}
