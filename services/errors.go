package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/league-portal/models"
)

var (
	ErrCreateFailed = errors.New("failed to create entity")
	ErrUpdateFailed = errors.New("failed to update entity")
	ErrDeleteFailed = errors.New("failed to delete entity")

	ErrUploadFailed        = errors.New("failed to store uploaded file")
	ErrUploaderMissing     = errors.New("file storage is not configured")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file is too large")

	ErrAuthInvalidCredentials = errors.New("invalid admin password")
	ErrAuthDisabled           = errors.New("admin login is not configured")
	ErrAuthInvalidToken       = errors.New("invalid or expired token")
)

// opError keeps typed store errors intact and wraps everything else with
// the failed operation.
func opError(op, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) || errors.Is(err, models.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", op, err)
}
