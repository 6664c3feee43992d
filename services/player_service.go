package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/store"
)

type PlayerService interface {
	// ListPlayers returns every player, or only one team's when teamID is set.
	ListPlayers(ctx context.Context, teamID string) (store.Snapshot[models.Player], error)
	GetPlayer(ctx context.Context, id string) (models.Player, error)
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (models.Player, error)
	UpdatePlayer(ctx context.Context, id string, input UpdatePlayerInput) (models.Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

type CreatePlayerInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	ShirtNumber int             `json:"shirtNumber" validate:"min=1,max=99"`
	Position    models.Position `json:"position" validate:"required"`
	TeamID      string          `json:"teamId" validate:"required"`
	Goals       int             `json:"goals" validate:"min=0"`
	Assists     int             `json:"assists" validate:"min=0"`
	PhotoURL    string          `json:"photoUrl" validate:"omitempty,max=500"`
}

type UpdatePlayerInput struct {
	Name        *string          `json:"name" validate:"omitnil,min=1,max=100"`
	ShirtNumber *int             `json:"shirtNumber" validate:"omitnil,min=1,max=99"`
	Position    *models.Position `json:"position"`
	TeamID      *string          `json:"teamId" validate:"omitnil,min=1"`
	Goals       *int             `json:"goals" validate:"omitnil,min=0"`
	Assists     *int             `json:"assists" validate:"omitnil,min=0"`
	PhotoURL    *string          `json:"photoUrl" validate:"omitnil,max=500"`
}

type playerService struct {
	store    *store.Store
	notifier *Notifier
	logger   *slog.Logger
}

func NewPlayerService(st *store.Store, notifier *Notifier, logger *slog.Logger) PlayerService {
	return &playerService{store: st, notifier: notifier, logger: logger}
}

func (s *playerService) ListPlayers(ctx context.Context, teamID string) (store.Snapshot[models.Player], error) {
	snap := s.store.Players()
	if teamID == "" {
		return snap, nil
	}
	if _, err := s.store.Team(teamID); err != nil {
		return store.Snapshot[models.Player]{}, err
	}
	filtered := make([]models.Player, 0, len(snap.Items))
	for _, p := range snap.Items {
		if p.TeamID == teamID {
			filtered = append(filtered, p)
		}
	}
	snap.Items = filtered
	return snap, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id string) (models.Player, error) {
	return s.store.Player(id)
}

func checkPosition(p models.Position) error {
	if !p.Valid() {
		return models.NewValidationError("position", "unknown position %q", p)
	}
	return nil
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (models.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.TeamID = strings.TrimSpace(input.TeamID)
	if err := validateInput(input); err != nil {
		return models.Player{}, err
	}
	if err := checkPosition(input.Position); err != nil {
		return models.Player{}, err
	}

	player, mutation, err := s.store.CreatePlayer(ctx, models.Player{
		ID:          newID(),
		Name:        input.Name,
		ShirtNumber: input.ShirtNumber,
		Position:    input.Position,
		TeamID:      input.TeamID,
		Goals:       input.Goals,
		Assists:     input.Assists,
		PhotoURL:    strings.TrimSpace(input.PhotoURL),
	})
	recordMutation(models.KindPlayers, "create", err)
	if err != nil {
		return models.Player{}, opError(ErrCreateFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Info("player created", slog.String("player_id", player.ID), slog.String("team_id", player.TeamID))
	return player, nil
}

// UpdatePlayer also sends one playerStatsChanged notification for each of
// goals and assists that changed.
func (s *playerService) UpdatePlayer(ctx context.Context, id string, input UpdatePlayerInput) (models.Player, error) {
	input.Name = trimPtr(input.Name)
	input.TeamID = trimPtr(input.TeamID)
	input.PhotoURL = trimPtr(input.PhotoURL)
	if err := validateInput(input); err != nil {
		return models.Player{}, err
	}
	if input.Position != nil {
		if err := checkPosition(*input.Position); err != nil {
			return models.Player{}, err
		}
	}

	before, after, mutation, err := s.store.UpdatePlayer(ctx, id, func(p *models.Player) error {
		if input.Name != nil {
			p.Name = *input.Name
		}
		if input.ShirtNumber != nil {
			p.ShirtNumber = *input.ShirtNumber
		}
		if input.Position != nil {
			p.Position = *input.Position
		}
		if input.TeamID != nil {
			p.TeamID = *input.TeamID
		}
		if input.Goals != nil {
			p.Goals = *input.Goals
		}
		if input.Assists != nil {
			p.Assists = *input.Assists
		}
		if input.PhotoURL != nil {
			p.PhotoURL = *input.PhotoURL
		}
		return nil
	})
	recordMutation(models.KindPlayers, "update", err)
	if err != nil {
		return models.Player{}, opError(ErrUpdateFailed, err)
	}
	s.notifier.Emit(mutation)

	for _, change := range statChanges(before, after) {
		s.notifier.PlayerStatChanged(change)
	}
	return after, nil
}

func statChanges(before, after models.Player) []models.PlayerStatChange {
	var out []models.PlayerStatChange
	if before.Goals != after.Goals {
		out = append(out, models.PlayerStatChange{PlayerName: after.Name, StatType: models.StatGoals, Value: after.Goals})
	}
	if before.Assists != after.Assists {
		out = append(out, models.PlayerStatChange{PlayerName: after.Name, StatType: models.StatAssists, Value: after.Assists})
	}
	return out
}

func (s *playerService) DeletePlayer(ctx context.Context, id string) error {
	player, mutation, err := s.store.RemovePlayer(ctx, id)
	recordMutation(models.KindPlayers, "delete", err)
	if err != nil {
		return opError(ErrDeleteFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Info("player deleted", slog.String("player_id", id), slog.String("name", player.Name))
	return nil
}
