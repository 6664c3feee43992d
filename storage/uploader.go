package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidKey = errors.New("invalid object key")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores clip videos and logos. Location in the result is the
// public URL the pages load the object from.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
