// Package domain defines the CSV ingestion models.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/foodnet/analytics/internal/errors"
)

// Dataset describes one uploaded CSV turned into its own table. DataID is
// both the link-table key and the physical table name.
type Dataset struct {
	DataID     string
	Columns    []string
	Rows       int
	UserID     uuid.UUID
	UploadedAt time.Time
}

var (
	// ErrUnsupportedFileType indicates the upload is not a CSV file.
	ErrUnsupportedFileType = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported file type")

	// ErrMalformedCSV indicates the file could not be parsed as CSV.
	ErrMalformedCSV = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed csv")

	// ErrEmptyCSV indicates the file has no header row.
	ErrEmptyCSV = apperrors.Wrap(apperrors.ErrInvalidInput, "empty csv")

	// ErrFileTooLarge indicates the upload exceeds the configured size cap.
	ErrFileTooLarge = apperrors.Wrap(apperrors.ErrInvalidInput, "file too large")
)
