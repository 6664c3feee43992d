package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Dosada05/league-portal/storage"
)

const (
	MaxImageSize int64 = 10 << 20
	MaxVideoSize int64 = 100 << 20
)

var imageTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
}

// FileInput is an uploaded file as read from a multipart form.
type FileInput struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// checkFile accepts a file by extension and size and returns the content
// type to store it with.
func checkFile(f FileInput, allowed map[string]string, maxSize int64) (ext, contentType string, err error) {
	ext = strings.ToLower(filepath.Ext(f.Filename))
	known, ok := allowed[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if f.Size > maxSize {
		return "", "", fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, f.Size, maxSize)
	}
	contentType = f.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = known
	}
	return ext, contentType, nil
}

func objectKey(prefix, ext string) string {
	return prefix + "/" + uuid.NewString() + ext
}

func newID() string {
	return uuid.NewString()
}

// replaceImage stores a new image, hands it to commit and removes whichever
// object lost: the previous one on success, the new one on failure.
func replaceImage(ctx context.Context, uploader storage.FileUploader, logger *slog.Logger, prefix string, f FileInput, commit func(url, key string) (oldKey string, err error)) error {
	if uploader == nil {
		return ErrUploaderMissing
	}
	ext, contentType, err := checkFile(f, imageTypes, MaxImageSize)
	if err != nil {
		return err
	}
	res, err := uploader.Upload(ctx, objectKey(prefix, ext), contentType, f.Reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	oldKey, err := commit(res.Location, res.Key)
	if err != nil {
		discard(uploader, logger, res.Key)
		return err
	}
	if oldKey != "" && oldKey != res.Key {
		discard(uploader, logger, oldKey)
	}
	return nil
}

// discard deletes an object that is no longer referenced. Failures only leave
// an orphan behind, so they are logged.
func discard(uploader storage.FileUploader, logger *slog.Logger, key string) {
	if err := uploader.Delete(context.Background(), key); err != nil {
		logger.Warn("failed to delete stored object", slog.String("key", key), slog.Any("error", err))
	}
}
