package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/storage"
	"github.com/Dosada05/league-portal/store"
)

const ClipsPerPage = 12

type ClipService interface {
	ListClips(ctx context.Context, query ClipQuery) (models.ClipPage, error)
	GetClip(ctx context.Context, id string) (models.Clip, error)
	UploadClip(ctx context.Context, input UploadClipInput, file FileInput) (models.Clip, error)
	DeleteClip(ctx context.Context, id string) error
	// Stats returns the aggregate counters with the clips collection version.
	Stats(ctx context.Context) (models.ClipStatsSnapshot, uint64, error)
	// RecordView and Like return the updated clip with the clips collection
	// version the increment produced.
	RecordView(ctx context.Context, id string) (models.Clip, uint64, error)
	Like(ctx context.Context, id string) (models.Clip, uint64, error)
}

// ClipQuery selects one page of clips, newest first. Page is 1-based and an
// empty category (or "all") matches every clip.
type ClipQuery struct {
	Page     int
	Category string
}

type UploadClipInput struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"required,max=2000"`
	Category        string `json:"category" validate:"required,max=50"`
	ClubName        string `json:"clubName" validate:"required,max=100"`
	DurationSeconds int    `json:"durationSeconds" validate:"min=0,max=86400"`
}

type clipService struct {
	store    *store.Store
	notifier *Notifier
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewClipService(st *store.Store, notifier *Notifier, uploader storage.FileUploader, logger *slog.Logger) ClipService {
	return &clipService{store: st, notifier: notifier, uploader: uploader, logger: logger}
}

func (s *clipService) ListClips(ctx context.Context, query ClipQuery) (models.ClipPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	category := strings.TrimSpace(query.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}

	matching := make([]models.Clip, 0)
	for _, c := range s.store.Clips().Items {
		if category == "" || strings.EqualFold(c.Category, category) {
			matching = append(matching, c)
		}
	}

	start := (page - 1) * ClipsPerPage
	if start > len(matching) {
		start = len(matching)
	}
	end := start + ClipsPerPage
	if end > len(matching) {
		end = len(matching)
	}
	return models.ClipPage{
		Clips:   matching[start:end],
		HasMore: end < len(matching),
		Total:   len(matching),
	}, nil
}

func (s *clipService) GetClip(ctx context.Context, id string) (models.Clip, error) {
	return s.store.Clip(id)
}

func (s *clipService) UploadClip(ctx context.Context, input UploadClipInput, file FileInput) (models.Clip, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	input.ClubName = strings.TrimSpace(input.ClubName)
	if err := validateInput(input); err != nil {
		return models.Clip{}, err
	}
	if s.uploader == nil {
		return models.Clip{}, ErrUploaderMissing
	}
	ext, contentType, err := checkFile(file, videoTypes, MaxVideoSize)
	if err != nil {
		return models.Clip{}, err
	}

	res, err := s.uploader.Upload(ctx, objectKey("clips", ext), contentType, file.Reader)
	if err != nil {
		recordMutation(models.KindClips, "create", err)
		return models.Clip{}, opError(ErrUploadFailed, err)
	}

	clip, mutation, err := s.store.CreateClip(ctx, models.Clip{
		ID:              newID(),
		Title:           input.Title,
		Description:     input.Description,
		ClubName:        input.ClubName,
		Category:        input.Category,
		DurationSeconds: input.DurationSeconds,
		VideoURL:        res.Location,
		StorageKey:      res.Key,
		ContentType:     contentType,
		FileSize:        file.Size,
	})
	recordMutation(models.KindClips, "create", err)
	if err != nil {
		discard(s.uploader, s.logger, res.Key)
		return models.Clip{}, opError(ErrCreateFailed, err)
	}
	s.notifier.Emit(mutation)
	s.logger.Info("clip uploaded",
		slog.String("clip_id", clip.ID),
		slog.String("key", clip.StorageKey),
		slog.Int64("size", clip.FileSize),
	)
	return clip, nil
}

// DeleteClip removes the clip and then its stored video.
func (s *clipService) DeleteClip(ctx context.Context, id string) error {
	clip, mutation, err := s.store.RemoveClip(ctx, id)
	recordMutation(models.KindClips, "delete", err)
	if err != nil {
		return opError(ErrDeleteFailed, err)
	}
	s.notifier.Emit(mutation)
	if clip.StorageKey != "" && s.uploader != nil {
		discard(s.uploader, s.logger, clip.StorageKey)
	}
	return nil
}

func (s *clipService) Stats(ctx context.Context) (models.ClipStatsSnapshot, uint64, error) {
	snap, version := s.store.ClipStats()
	return snap, version, nil
}

func (s *clipService) RecordView(ctx context.Context, id string) (models.Clip, uint64, error) {
	return s.increment(ctx, id, store.CounterViews)
}

func (s *clipService) Like(ctx context.Context, id string) (models.Clip, uint64, error) {
	return s.increment(ctx, id, store.CounterLikes)
}

func (s *clipService) increment(ctx context.Context, id string, counter store.Counter) (models.Clip, uint64, error) {
	inc, mutation, err := s.store.IncrementClip(ctx, id, counter)
	recordMutation(models.KindClips, string(counter), err)
	if err != nil {
		return models.Clip{}, 0, opError(ErrUpdateFailed, err)
	}
	s.notifier.Emit(mutation)
	return inc.Clip, inc.Version, nil
}
