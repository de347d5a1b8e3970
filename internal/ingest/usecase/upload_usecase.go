// Package usecase implements CSV upload business logic.
package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/foodnet/analytics/internal/database"
	"github.com/foodnet/analytics/internal/ingest/domain"

	apperrors "github.com/foodnet/analytics/internal/errors"
)

// previewRows is how many rows the upload response echoes back.
const previewRows = 5

// defaultDatasetName is used when the client names nothing.
const defaultDatasetName = "blank"

// DatasetRepository defines the persistence operations the use case needs.
// CreateTable, InsertRows and LinkUpload run inside one transaction so a
// failed upload leaves nothing behind.
type DatasetRepository interface {
	CreateTable(ctx context.Context, dataID string, columns []string) error
	InsertRows(ctx context.Context, dataID string, columns []string, rows [][]string) error
	LinkUpload(ctx context.Context, userID uuid.UUID, dataID string) error
}

// UploadInput carries one CSV upload.
type UploadInput struct {
	Name        string
	UserID      uuid.UUID
	Filename    string
	ContentType string
	File        io.Reader
}

// UploadOutput reports where the data landed and previews the first rows.
type UploadOutput struct {
	DataID  string
	Rows    int
	Preview []map[string]string
}

// UploadUseCase ingests CSV files into per-dataset tables.
type UploadUseCase interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
}

type uploadUseCase struct {
	repo      DatasetRepository
	txManager database.TxManager
	maxBytes  int64
	logger    *slog.Logger
}

// NewUploadUseCase creates an UploadUseCase. maxBytes caps the accepted file
// size; zero or negative disables the cap.
func NewUploadUseCase(
	repo DatasetRepository,
	txManager database.TxManager,
	maxBytes int64,
	logger *slog.Logger,
) UploadUseCase {
	return &uploadUseCase{
		repo:      repo,
		txManager: txManager,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// Upload parses the file and loads it into a fresh table named
// "<name>_<uuid>" with TEXT columns taken from the CSV header. The table,
// its rows and the uploader link are written in a single transaction.
func (uc *uploadUseCase) Upload(ctx context.Context, input UploadInput) (*UploadOutput, error) {
	if !isCSV(input.Filename, input.ContentType) {
		uc.logger.Warn("upload rejected: unsupported file type",
			slog.String("filename", input.Filename),
			slog.String("content_type", input.ContentType))
		return nil, domain.ErrUnsupportedFileType
	}

	columns, rows, err := uc.parseCSV(input.File)
	if err != nil {
		uc.logger.Warn("upload rejected: parse failure",
			slog.String("filename", input.Filename),
			slog.Any("error", err))
		return nil, err
	}

	dataID := fmt.Sprintf("%s_%s", sanitizeDatasetName(input.Name), uuidHex())

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.CreateTable(ctx, dataID, columns); err != nil {
			return err
		}
		if err := uc.repo.InsertRows(ctx, dataID, columns, rows); err != nil {
			return err
		}
		return uc.repo.LinkUpload(ctx, input.UserID, dataID)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("csv ingested",
		slog.String("data_id", dataID),
		slog.Int("rows", len(rows)),
		slog.String("user_id", input.UserID.String()))

	return &UploadOutput{
		DataID:  dataID,
		Rows:    len(rows),
		Preview: buildPreview(columns, rows),
	}, nil
}

// parseCSV reads the whole file, enforcing the size cap and a rectangular
// shape. The first record is the header.
func (uc *uploadUseCase) parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := file
	if uc.maxBytes > 0 {
		reader = io.LimitReader(file, uc.maxBytes+1)
	}

	counting := &countingReader{r: reader}
	records, err := csv.NewReader(counting).ReadAll()
	// The size check comes first: a truncated file usually also fails to
	// parse, and the size error is the actionable one.
	if uc.maxBytes > 0 && counting.n > uc.maxBytes {
		return nil, nil, domain.ErrFileTooLarge
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(domain.ErrMalformedCSV, err.Error())
	}
	if len(records) == 0 {
		return nil, nil, domain.ErrEmptyCSV
	}

	columns := records[0]
	seen := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		if strings.TrimSpace(column) == "" {
			return nil, nil, apperrors.Wrap(domain.ErrMalformedCSV, "empty column name in header")
		}
		if _, dup := seen[column]; dup {
			return nil, nil, apperrors.Wrapf(domain.ErrMalformedCSV, "duplicate column %q", column)
		}
		seen[column] = struct{}{}
	}

	return columns, records[1:], nil
}

// buildPreview maps the first rows back onto the header.
func buildPreview(columns []string, rows [][]string) []map[string]string {
	n := previewRows
	if len(rows) < n {
		n = len(rows)
	}

	preview := make([]map[string]string, 0, n)
	for _, row := range rows[:n] {
		item := make(map[string]string, len(columns))
		for i, column := range columns {
			item[column] = row[i]
		}
		preview = append(preview, item)
	}
	return preview
}

// isCSV accepts text/csv content types and .csv filenames.
func isCSV(filename, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "text/csv") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".csv")
}

// sanitizeDatasetName reduces the client-chosen name to a safe identifier
// fragment.
func sanitizeDatasetName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return defaultDatasetName
	}
	return out
}

// uuidHex returns a v7 UUID without dashes, matching dataset table naming.
func uuidHex() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

// countingReader tracks how many bytes passed through.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
