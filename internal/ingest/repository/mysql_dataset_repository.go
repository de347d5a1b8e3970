package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/foodnet/analytics/internal/database"

	apperrors "github.com/foodnet/analytics/internal/errors"
)

// MySQLDatasetRepository handles dataset persistence for MySQL.
type MySQLDatasetRepository struct {
	db *sql.DB
}

// NewMySQLDatasetRepository creates a new MySQLDatasetRepository.
func NewMySQLDatasetRepository(db *sql.DB) *MySQLDatasetRepository {
	return &MySQLDatasetRepository{
		db: db,
	}
}

// CreateTable creates the dataset's table with one TEXT column per CSV
// header field.
func (r *MySQLDatasetRepository) CreateTable(ctx context.Context, dataID string, columns []string) error {
	querier := database.GetTx(ctx, r.db)

	defs := make([]string, len(columns))
	for i, column := range columns {
		defs[i] = quoteMySQLIdent(column) + " TEXT"
	}
	query := fmt.Sprintf("CREATE TABLE %s (%s)",
		quoteMySQLIdent(dataID), strings.Join(defs, ", "))

	if _, err := querier.ExecContext(ctx, query); err != nil {
		return apperrors.Wrapf(err, "failed to create dataset table %s", dataID)
	}
	return nil
}

// InsertRows bulk-inserts the parsed CSV rows in batches.
func (r *MySQLDatasetRepository) InsertRows(ctx context.Context, dataID string, columns []string, rows [][]string) error {
	querier := database.GetTx(ctx, r.db)

	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = quoteMySQLIdent(column)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ",
		quoteMySQLIdent(dataID), strings.Join(quoted, ", "))

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*len(columns))
		for i, row := range batch {
			placeholders[i] = rowPlaceholder
			for j := range columns {
				args = append(args, row[j])
			}
		}

		query := prefix + strings.Join(placeholders, ", ")
		if _, err := querier.ExecContext(ctx, query, args...); err != nil {
			return apperrors.Wrapf(err, "failed to insert rows into %s", dataID)
		}
	}

	return nil
}

// LinkUpload records the dataset against its uploader.
func (r *MySQLDatasetRepository) LinkUpload(ctx context.Context, userID uuid.UUID, dataID string) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO user_data_items (user_id, data_id, uploaded_at) VALUES (?, ?, NOW())`

	uuidBytes, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	if _, err := querier.ExecContext(ctx, query, uuidBytes, dataID); err != nil {
		return apperrors.Wrap(err, "failed to link upload")
	}
	return nil
}

// quoteMySQLIdent backtick-quotes an identifier, escaping embedded backticks.
func quoteMySQLIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}
