// Package repository provides data persistence implementations for uploaded
// datasets.
//
// Each upload becomes its own table of TEXT columns named after the CSV
// header, plus a row in user_data_items linking the dataset to its uploader.
// Identifiers are always quoted because table and column names come from
// user input.
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

// insertBatchSize caps rows per INSERT statement to keep placeholder counts
// within driver limits.
const insertBatchSize = 500

// PostgreSQLDatasetRepository handles dataset persistence for PostgreSQL.
type PostgreSQLDatasetRepository struct {
	db *sql.DB
}

// NewPostgreSQLDatasetRepository creates a new PostgreSQLDatasetRepository.
func NewPostgreSQLDatasetRepository(db *sql.DB) *PostgreSQLDatasetRepository {
	return &PostgreSQLDatasetRepository{
		db: db,
	}
}

// CreateTable creates the dataset's table with one TEXT column per CSV
// header field.
func (r *PostgreSQLDatasetRepository) CreateTable(ctx context.Context, dataID string, columns []string) error {
	querier := database.GetTx(ctx, r.db)

	defs := make([]string, len(columns))
	for i, column := range columns {
		defs[i] = quotePostgreSQLIdent(column) + " TEXT"
	}
	query := fmt.Sprintf("CREATE TABLE %s (%s)",
		quotePostgreSQLIdent(dataID), strings.Join(defs, ", "))

	if _, err := querier.ExecContext(ctx, query); err != nil {
		return apperrors.Wrapf(err, "failed to create dataset table %s", dataID)
	}
	return nil
}

// InsertRows bulk-inserts the parsed CSV rows in batches.
func (r *PostgreSQLDatasetRepository) InsertRows(ctx context.Context, dataID string, columns []string, rows [][]string) error {
	querier := database.GetTx(ctx, r.db)

	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = quotePostgreSQLIdent(column)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ",
		quotePostgreSQLIdent(dataID), strings.Join(quoted, ", "))

	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*len(columns))
		n := 1
		for i, row := range batch {
			cells := make([]string, len(columns))
			for j := range columns {
				cells[j] = fmt.Sprintf("$%d", n)
				n++
				args = append(args, row[j])
			}
			placeholders[i] = "(" + strings.Join(cells, ", ") + ")"
		}

		query := prefix + strings.Join(placeholders, ", ")
		if _, err := querier.ExecContext(ctx, query, args...); err != nil {
			return apperrors.Wrapf(err, "failed to insert rows into %s", dataID)
		}
	}

	return nil
}

// LinkUpload records the dataset against its uploader.
func (r *PostgreSQLDatasetRepository) LinkUpload(ctx context.Context, userID uuid.UUID, dataID string) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO user_data_items (user_id, data_id, uploaded_at) VALUES ($1, $2, NOW())`

	if _, err := querier.ExecContext(ctx, query, userID, dataID); err != nil {
		return apperrors.Wrap(err, "failed to link upload")
	}
	return nil
}

// quotePostgreSQLIdent double-quotes an identifier, escaping embedded quotes.
func quotePostgreSQLIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
