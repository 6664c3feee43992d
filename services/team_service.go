package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/storage"
	"github.com/Dosada05/league-portal/store"
)

type TeamService interface {
	ListTeams(ctx context.Context) (store.Snapshot[models.Team], error)
	GetTeam(ctx context.Context, id string) (models.Team, error)
	CreateTeam(ctx context.Context, input CreateTeamInput) (models.Team, error)
	UpdateTeam(ctx context.Context, id string, input UpdateTeamInput) (models.Team, error)
	DeleteTeam(ctx context.Context, id string) (store.TeamCascade, error)
	UploadLogo(ctx context.Context, id string, file FileInput) (models.Team, error)
}

type CreateTeamInput struct {
	Name    string  `json:"name" validate:"required,max=100"`
	ClubID  *string `json:"clubId"`
	Founded int     `json:"founded" validate:"omitempty,min=1850,max=2100"`
	Stadium string  `json:"stadium" validate:"max=120"`
}

// UpdateTeamInput changes only the fields that are present. An empty clubId
// detaches the team from its club.
type UpdateTeamInput struct {
	Name    *string `json:"name" validate:"omitnil,min=1,max=100"`
	ClubID  *string `json:"clubId"`
	Founded *int    `json:"founded" validate:"omitnil,min=1850,max=2100"`
	Stadium *string `json:"stadium" validate:"omitnil,max=120"`
}

type teamService struct {
	store    *store.Store
	notifier *Notifier
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewTeamService(st *store.Store, notifier *Notifier, uploader storage.FileUploader, logger *slog.Logger) TeamService {
	return &teamService{store: st, notifier: notifier, uploader: uploader, logger: logger}
}

func (s *teamService) ListTeams(ctx context.Context) (store.Snapshot[models.Team], error) {
	return s.store.Teams(), nil
}

func (s *teamService) GetTeam(ctx context.Context, id string) (models.Team, error) {
	return s.store.Team(id)
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Stadium = strings.TrimSpace(input.Stadium)
	if err := validateInput(input); err != nil {
		return models.Team{}, err
	}

	team, mutation, err := s.store.CreateTeam(ctx, models.Team{
		ID:      newID(),
		Name:    input.Name,
		ClubID:  optionalID(input.ClubID),
		Founded: input.Founded,
		Stadium: input.Stadium,
	})
	recordMutation(models.KindTeams, "create", err)
	if err != nil {
		return models.Team{}, opError(ErrCreateFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Info("team created", slog.String("team_id", team.ID), slog.String("name", team.Name))
	return team, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id string, input UpdateTeamInput) (models.Team, error) {
	input.Name = trimPtr(input.Name)
	input.Stadium = trimPtr(input.Stadium)
	if err := validateInput(input); err != nil {
		return models.Team{}, err
	}

	team, mutation, err := s.store.UpdateTeam(ctx, id, func(t *models.Team) error {
		if input.Name != nil {
			t.Name = *input.Name
		}
		if input.ClubID != nil {
			t.ClubID = optionalID(input.ClubID)
		}
		if input.Founded != nil {
			t.Founded = *input.Founded
		}
		if input.Stadium != nil {
			t.Stadium = *input.Stadium
		}
		return nil
	})
	recordMutation(models.KindTeams, "update", err)
	if err != nil {
		return models.Team{}, opError(ErrUpdateFailed, err)
	}
	s.notifier.Emit(mutation)
	return team, nil
}

// DeleteTeam removes the team together with its players and matches.
func (s *teamService) DeleteTeam(ctx context.Context, id string) (store.TeamCascade, error) {
	team, err := s.store.Team(id)
	if err != nil {
		return store.TeamCascade{}, err
	}
	cascade, mutation, err := s.store.RemoveTeam(ctx, id)
	recordMutation(models.KindTeams, "delete", err)
	if err != nil {
		return store.TeamCascade{}, opError(ErrDeleteFailed, err)
	}
	s.notifier.Emit(mutation)
	if team.LogoKey != "" && s.uploader != nil {
		discard(s.uploader, s.logger, team.LogoKey)
	}
	s.logger.Info("team deleted",
		slog.String("team_id", id),
		slog.Int("players_removed", len(cascade.PlayerIDs)),
		slog.Int("matches_removed", len(cascade.MatchIDs)),
	)
	return cascade, nil
}

func (s *teamService) UploadLogo(ctx context.Context, id string, file FileInput) (models.Team, error) {
	if _, err := s.store.Team(id); err != nil {
		return models.Team{}, err
	}
	var updated models.Team
	err := replaceImage(ctx, s.uploader, s.logger, "logos/teams", file, func(url, key string) (string, error) {
		var oldKey string
		team, mutation, err := s.store.UpdateTeam(ctx, id, func(t *models.Team) error {
			oldKey = t.LogoKey
			t.LogoURL, t.LogoKey = url, key
			return nil
		})
		if err != nil {
			return "", opError(ErrUpdateFailed, err)
		}
		updated = team
		s.notifier.Emit(mutation)
		return oldKey, nil
	})
	recordMutation(models.KindTeams, "logo", err)
	if err != nil {
		return models.Team{}, err
	}
	return updated, nil
}
