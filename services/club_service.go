package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/storage"
	"github.com/Dosada05/league-portal/store"
)

type ClubService interface {
	ListClubs(ctx context.Context) (store.Snapshot[models.Club], error)
	GetClub(ctx context.Context, id string) (models.Club, error)
	CreateClub(ctx context.Context, input CreateClubInput) (models.Club, error)
	UpdateClub(ctx context.Context, id string, input UpdateClubInput) (models.Club, error)
	DeleteClub(ctx context.Context, id string) error
	UploadLogo(ctx context.Context, id string, file FileInput) (models.Club, error)
}

type CreateClubInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	FoundedYear int    `json:"foundedYear" validate:"omitempty,min=1850,max=2100"`
}

type UpdateClubInput struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	FoundedYear *int    `json:"foundedYear" validate:"omitnil,min=1850,max=2100"`
}

type clubService struct {
	store    *store.Store
	notifier *Notifier
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewClubService(st *store.Store, notifier *Notifier, uploader storage.FileUploader, logger *slog.Logger) ClubService {
	return &clubService{store: st, notifier: notifier, uploader: uploader, logger: logger}
}

func (s *clubService) ListClubs(ctx context.Context) (store.Snapshot[models.Club], error) {
	return s.store.Clubs(), nil
}

func (s *clubService) GetClub(ctx context.Context, id string) (models.Club, error) {
	return s.store.Club(id)
}

func (s *clubService) CreateClub(ctx context.Context, input CreateClubInput) (models.Club, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateInput(input); err != nil {
		return models.Club{}, err
	}

	club, mutation, err := s.store.CreateClub(ctx, models.Club{
		ID:          newID(),
		Name:        input.Name,
		Description: input.Description,
		FoundedYear: input.FoundedYear,
	})
	recordMutation(models.KindClubs, "create", err)
	if err != nil {
		return models.Club{}, opError(ErrCreateFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Info("club created", slog.String("club_id", club.ID), slog.String("name", club.Name))
	return club, nil
}

func (s *clubService) UpdateClub(ctx context.Context, id string, input UpdateClubInput) (models.Club, error) {
	input.Name = trimPtr(input.Name)
	input.Description = trimPtr(input.Description)
	if err := validateInput(input); err != nil {
		return models.Club{}, err
	}

	club, mutation, err := s.store.UpdateClub(ctx, id, func(c *models.Club) error {
		if input.Name != nil {
			c.Name = *input.Name
		}
		if input.Description != nil {
			c.Description = *input.Description
		}
		if input.FoundedYear != nil {
			c.FoundedYear = *input.FoundedYear
		}
		return nil
	})
	recordMutation(models.KindClubs, "update", err)
	if err != nil {
		return models.Club{}, opError(ErrUpdateFailed, err)
	}
	s.notifier.Emit(mutation)
	return s.withPlayerCount(club), nil
}

// DeleteClub removes the club. Its teams stay and lose their club reference.
func (s *clubService) DeleteClub(ctx context.Context, id string) error {
	club, mutation, err := s.store.RemoveClub(ctx, id)
	recordMutation(models.KindClubs, "delete", err)
	if err != nil {
		return opError(ErrDeleteFailed, err)
	}
	s.notifier.Emit(mutation)
	if club.LogoKey != "" && s.uploader != nil {
		discard(s.uploader, s.logger, club.LogoKey)
	}
	s.logger.Info("club deleted", slog.String("club_id", id))
	return nil
}

func (s *clubService) UploadLogo(ctx context.Context, id string, file FileInput) (models.Club, error) {
	if _, err := s.store.Club(id); err != nil {
		return models.Club{}, err
	}
	var updated models.Club
	err := replaceImage(ctx, s.uploader, s.logger, "logos/clubs", file, func(url, key string) (string, error) {
		var oldKey string
		club, mutation, err := s.store.UpdateClub(ctx, id, func(c *models.Club) error {
			oldKey = c.LogoKey
			c.LogoURL, c.LogoKey = url, key
			return nil
		})
		if err != nil {
			return "", opError(ErrUpdateFailed, err)
		}
		updated = club
		s.notifier.Emit(mutation)
		return oldKey, nil
	})
	recordMutation(models.KindClubs, "logo", err)
	if err != nil {
		return models.Club{}, err
	}
	return s.withPlayerCount(updated), nil
}

// withPlayerCount re-reads the club so the derived count is filled in.
func (s *clubService) withPlayerCount(club models.Club) models.Club {
	if fresh, err := s.store.Club(club.ID); err == nil {
		return fresh
	}
	return club
}
