package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/league-portal/brackets"
	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/store"
)

type PlayoffService interface {
	// GetBracket returns nil when no bracket has been drawn.
	GetBracket(ctx context.Context) (*models.Bracket, uint64, error)
	CreateBracket(ctx context.Context, input CreateBracketInput) (models.Bracket, error)
	RecordResult(ctx context.Context, matchID string, input PlayoffResultInput) (models.Bracket, error)
	DeleteBracket(ctx context.Context) (int, error)
}

type CreateBracketInput struct {
	TeamIDs []string `json:"teamIds" validate:"required,unique,dive,required"`
}

type PlayoffResultInput struct {
	HomeScore *int `json:"homeScore" validate:"required,min=0"`
	AwayScore *int `json:"awayScore" validate:"required,min=0"`
}

type playoffService struct {
	store     *store.Store
	notifier  *Notifier
	generator *brackets.SingleEliminationGenerator
	logger    *slog.Logger
}

func NewPlayoffService(st *store.Store, notifier *Notifier, generator *brackets.SingleEliminationGenerator, logger *slog.Logger) PlayoffService {
	return &playoffService{store: st, notifier: notifier, generator: generator, logger: logger}
}

func (s *playoffService) GetBracket(ctx context.Context) (*models.Bracket, uint64, error) {
	b, version, ok := s.store.Bracket()
	if !ok {
		return nil, version, nil
	}
	return &b, version, nil
}

// CreateBracket seeds a new single-elimination bracket in the given order
// and replaces the previous one.
func (s *playoffService) CreateBracket(ctx context.Context, input CreateBracketInput) (models.Bracket, error) {
	if err := validateInput(input); err != nil {
		return models.Bracket{}, err
	}
	matches, err := s.generator.Generate(ctx, input.TeamIDs)
	if err != nil {
		if errors.Is(err, brackets.ErrBracketSize) {
			return models.Bracket{}, models.NewValidationError("teamIds", "%s", err.Error())
		}
		return models.Bracket{}, opError(ErrCreateFailed, err)
	}

	bracket, mutation, err := s.store.ReplaceBracket(ctx, models.Bracket{
		ID:      newID(),
		Size:    len(input.TeamIDs),
		TeamIDs: input.TeamIDs,
		Matches: matches,
	})
	recordMutation(models.KindPlayoffs, "create", err)
	if err != nil {
		return models.Bracket{}, opError(ErrCreateFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Info("playoff bracket drawn", slog.String("bracket_id", bracket.ID), slog.Int("size", bracket.Size))
	return bracket, nil
}

func (s *playoffService) RecordResult(ctx context.Context, matchID string, input PlayoffResultInput) (models.Bracket, error) {
	if err := validateInput(input); err != nil {
		return models.Bracket{}, err
	}
	bracket, mutation, err := s.store.UpdateBracket(ctx, func(b *models.Bracket) error {
		return brackets.Advance(b, matchID, *input.HomeScore, *input.AwayScore)
	})
	recordMutation(models.KindPlayoffs, "result", err)
	if err != nil {
		return models.Bracket{}, opError(ErrUpdateFailed, err)
	}
	s.notifier.Emit(mutation)
	if champion := bracket.Champion(); champion != nil {
		s.logger.Info("playoff champion decided", slog.String("team_id", *champion))
	}
	return bracket, nil
}

func (s *playoffService) DeleteBracket(ctx context.Context) (int, error) {
	n, mutation, err := s.store.RemoveBracket(ctx)
	recordMutation(models.KindPlayoffs, "delete", err)
	if err != nil {
		return 0, opError(ErrDeleteFailed, err)
	}
	s.notifier.Emit(mutation)
	return n, nil
}
