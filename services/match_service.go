package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/league-portal/brackets"
	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/store"
)

const dateLayout = "2006-01-02"

type MatchService interface {
	ListMatches(ctx context.Context) (store.Snapshot[models.Match], error)
	GetMatch(ctx context.Context, id string) (models.Match, error)
	CreateMatch(ctx context.Context, input CreateMatchInput) (models.Match, error)
	UpdateMatch(ctx context.Context, id string, input UpdateMatchInput) (models.Match, error)
	DeleteMatch(ctx context.Context, id string) error
	// CreateMatches stores a batch and skips fixtures that already exist.
	CreateMatches(ctx context.Context, input BulkMatchesInput) (BulkResult, error)
	// GenerateFixtures builds and stores a round-robin calendar.
	GenerateFixtures(ctx context.Context, input GenerateFixturesInput) (BulkResult, error)
	DeleteAllMatches(ctx context.Context) (int, error)
}

type CreateMatchInput struct {
	HomeTeamID string             `json:"homeTeamId" validate:"required"`
	AwayTeamID string             `json:"awayTeamId" validate:"required,nefield=HomeTeamID"`
	Date       string             `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string             `json:"time" validate:"omitempty,datetime=15:04"`
	Venue      string             `json:"venue" validate:"max=120"`
	Matchday   int                `json:"matchday" validate:"min=1"`
	Status     models.MatchStatus `json:"status" validate:"omitempty,oneof=upcoming live finished scheduled"`
	HomeScore  *int               `json:"homeScore" validate:"omitnil,min=0"`
	AwayScore  *int               `json:"awayScore" validate:"omitnil,min=0"`
}

type UpdateMatchInput struct {
	HomeTeamID *string             `json:"homeTeamId" validate:"omitnil,min=1"`
	AwayTeamID *string             `json:"awayTeamId" validate:"omitnil,min=1"`
	Date       *string             `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Time       *string             `json:"time" validate:"omitempty,datetime=15:04"`
	Venue      *string             `json:"venue" validate:"omitnil,max=120"`
	Matchday   *int                `json:"matchday" validate:"omitnil,min=1"`
	Status     *models.MatchStatus `json:"status" validate:"omitnil,oneof=upcoming live finished scheduled"`
	HomeScore  *int                `json:"homeScore" validate:"omitnil,min=0"`
	AwayScore  *int                `json:"awayScore" validate:"omitnil,min=0"`
}

type BulkMatchesInput struct {
	Matches []CreateMatchInput `json:"matches" validate:"required,min=1,max=1000,dive"`
}

type GenerateFixturesInput struct {
	TeamIDs     []string `json:"teamIds" validate:"omitempty,unique,dive,required"`
	Legs        int      `json:"legs" validate:"omitempty,oneof=1 2"`
	StartDate   string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	DaysBetween int      `json:"daysBetween" validate:"omitempty,min=1,max=60"`
	Time        string   `json:"time" validate:"omitempty,datetime=15:04"`
	Venue       string   `json:"venue" validate:"max=120"`
}

type BulkResult struct {
	Created int            `json:"created"`
	Skipped int            `json:"skipped"`
	Total   int            `json:"total"`
	Matches []models.Match `json:"matches"`
}

type matchService struct {
	store     *store.Store
	notifier  *Notifier
	generator brackets.FixtureGenerator
	logger    *slog.Logger
}

func NewMatchService(st *store.Store, notifier *Notifier, generator brackets.FixtureGenerator, logger *slog.Logger) MatchService {
	return &matchService{store: st, notifier: notifier, generator: generator, logger: logger}
}

func (s *matchService) ListMatches(ctx context.Context) (store.Snapshot[models.Match], error) {
	return s.store.Matches(), nil
}

func (s *matchService) GetMatch(ctx context.Context, id string) (models.Match, error) {
	return s.store.Match(id)
}

func (in CreateMatchInput) toMatch() models.Match {
	m := models.Match{
		ID:         newID(),
		HomeTeamID: strings.TrimSpace(in.HomeTeamID),
		AwayTeamID: strings.TrimSpace(in.AwayTeamID),
		Date:       in.Date,
		Time:       in.Time,
		Venue:      strings.TrimSpace(in.Venue),
		Matchday:   in.Matchday,
		Status:     in.Status.Normalize(),
		HomeScore:  in.HomeScore,
		AwayScore:  in.AwayScore,
	}
	if m.Matchday == 0 {
		m.Matchday = 1
	}
	return m
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (models.Match, error) {
	if input.Matchday == 0 {
		input.Matchday = 1
	}
	if err := validateInput(input); err != nil {
		return models.Match{}, err
	}

	match, mutation, err := s.store.CreateMatch(ctx, input.toMatch())
	recordMutation(models.KindMatches, "create", err)
	if err != nil {
		return models.Match{}, opError(ErrCreateFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Info("match created",
		slog.String("match_id", match.ID),
		slog.String("home_team_id", match.HomeTeamID),
		slog.String("away_team_id", match.AwayTeamID),
	)
	return match, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id string, input UpdateMatchInput) (models.Match, error) {
	if err := validateInput(input); err != nil {
		return models.Match{}, err
	}

	_, after, mutation, err := s.store.UpdateMatch(ctx, id, func(m *models.Match) error {
		if input.HomeTeamID != nil {
			m.HomeTeamID = strings.TrimSpace(*input.HomeTeamID)
		}
		if input.AwayTeamID != nil {
			m.AwayTeamID = strings.TrimSpace(*input.AwayTeamID)
		}
		if input.Date != nil {
			m.Date = *input.Date
		}
		if input.Time != nil {
			m.Time = *input.Time
		}
		if input.Venue != nil {
			m.Venue = strings.TrimSpace(*input.Venue)
		}
		if input.Matchday != nil {
			m.Matchday = *input.Matchday
		}
		if input.Status != nil {
			m.Status = input.Status.Normalize()
		}
		if input.HomeScore != nil {
			m.HomeScore = input.HomeScore
		}
		if input.AwayScore != nil {
			m.AwayScore = input.AwayScore
		}
		return nil
	})
	recordMutation(models.KindMatches, "update", err)
	if err != nil {
		return models.Match{}, opError(ErrUpdateFailed, err)
	}
	s.notifier.Emit(mutation)
	return after, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id string) error {
	mutation, err := s.store.RemoveMatch(ctx, id)
	recordMutation(models.KindMatches, "delete", err)
	if err != nil {
		return opError(ErrDeleteFailed, err)
	}
	s.notifier.Emit(mutation)
	return nil
}

func (s *matchService) CreateMatches(ctx context.Context, input BulkMatchesInput) (BulkResult, error) {
	for i := range input.Matches {
		if input.Matches[i].Matchday == 0 {
			input.Matches[i].Matchday = 1
		}
	}
	if err := validateInput(input); err != nil {
		return BulkResult{}, err
	}
	batch := make([]models.Match, len(input.Matches))
	for i, in := range input.Matches {
		batch[i] = in.toMatch()
	}
	return s.storeBatch(ctx, "bulk", batch)
}

func (s *matchService) GenerateFixtures(ctx context.Context, input GenerateFixturesInput) (BulkResult, error) {
	if err := validateInput(input); err != nil {
		return BulkResult{}, err
	}
	start, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return BulkResult{}, models.NewValidationError("startDate", "must match the format %s", dateLayout)
	}

	teamIDs := input.TeamIDs
	if len(teamIDs) == 0 {
		for _, t := range s.store.Teams().Items {
			teamIDs = append(teamIDs, t.ID)
		}
	}
	if len(teamIDs) < 2 {
		return BulkResult{}, models.NewValidationError("teamIds", "at least 2 teams are needed, found %d", len(teamIDs))
	}

	fixtures, err := s.generator.Generate(ctx, brackets.FixtureParams{
		TeamIDs:     teamIDs,
		Legs:        input.Legs,
		StartDate:   start,
		DaysBetween: input.DaysBetween,
		KickOff:     input.Time,
		Venue:       strings.TrimSpace(input.Venue),
	})
	if err != nil {
		return BulkResult{}, fmt.Errorf("%s: %w", s.generator.Name(), err)
	}
	for i := range fixtures {
		fixtures[i].ID = newID()
	}
	return s.storeBatch(ctx, "generate", fixtures)
}

func (s *matchService) storeBatch(ctx context.Context, op string, batch []models.Match) (BulkResult, error) {
	created, skipped, mutation, err := s.store.CreateMatches(ctx, batch)
	recordMutation(models.KindMatches, op, err)
	if err != nil {
		return BulkResult{}, opError(ErrCreateFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Info("matches created",
		slog.String("op", op),
		slog.Int("created", len(created)),
		slog.Int("skipped", skipped),
	)
	return BulkResult{
		Created: len(created),
		Skipped: skipped,
		Total:   len(batch),
		Matches: created,
	}, nil
}

func (s *matchService) DeleteAllMatches(ctx context.Context) (int, error) {
	n, mutation, err := s.store.RemoveAllMatches(ctx)
	recordMutation(models.KindMatches, "delete_all", err)
	if err != nil {
		return 0, opError(ErrDeleteFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Info("all matches deleted", slog.Int("deleted", n))
	return n, nil
}
