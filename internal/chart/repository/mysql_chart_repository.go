package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/foodnet/analytics/internal/chart/domain"
	"github.com/foodnet/analytics/internal/database"

	apperrors "github.com/foodnet/analytics/internal/errors"
)

// MySQLChartRepository handles chart persistence for MySQL.
type MySQLChartRepository struct {
	db *sql.DB
}

// NewMySQLChartRepository creates a new MySQLChartRepository.
func NewMySQLChartRepository(db *sql.DB) *MySQLChartRepository {
	return &MySQLChartRepository{
		db: db,
	}
}

// Create inserts a new chart.
func (r *MySQLChartRepository) Create(ctx context.Context, chart *domain.Chart) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO charts (id, title, description, chart_type, user_id, organization_id, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())`

	idBytes, err := chart.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	userBytes, err := chart.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user UUID")
	}
	orgBytes, err := chart.OrganizationID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal organization UUID")
	}

	_, err = querier.ExecContext(ctx, query,
		idBytes, chart.Title, nullableDescription(chart.Description),
		string(chart.ChartType), userBytes, orgBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to create chart")
	}
	return nil
}

// GetByID retrieves a chart by ID.
func (r *MySQLChartRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chart, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, title, description, chart_type, user_id, organization_id, created_at, updated_at
			  FROM charts WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	chart, err := scanMySQLChart(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChartNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get chart by id")
	}

	return chart, nil
}

// List retrieves charts newest-first with limit/offset pagination.
func (r *MySQLChartRepository) List(ctx context.Context, limit, offset int) ([]*domain.Chart, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, title, description, chart_type, user_id, organization_id, created_at, updated_at
			  FROM charts ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list charts")
	}
	defer rows.Close()

	var charts []*domain.Chart
	for rows.Next() {
		chart, err := scanMySQLChart(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan chart")
		}
		charts = append(charts, chart)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate charts")
	}

	return charts, nil
}

// ListByOrganization retrieves an organization's charts newest-first.
func (r *MySQLChartRepository) ListByOrganization(
	ctx context.Context,
	orgID uuid.UUID,
	limit, offset int,
) ([]*domain.Chart, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, title, description, chart_type, user_id, organization_id, created_at, updated_at
			  FROM charts WHERE organization_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`

	orgBytes, err := orgID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal organization UUID")
	}

	rows, err := querier.QueryContext(ctx, query, orgBytes, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list charts by organization")
	}
	defer rows.Close()

	var charts []*domain.Chart
	for rows.Next() {
		chart, err := scanMySQLChart(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan chart")
		}
		charts = append(charts, chart)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate charts")
	}

	return charts, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMySQLChart reads one chart row, converting BINARY(16) columns back
// into UUIDs.
func scanMySQLChart(row rowScanner) (*domain.Chart, error) {
	var chart domain.Chart
	var description sql.NullString
	var chartType string
	var idBytes, userBytes, orgBytes []byte

	if err := row.Scan(
		&idBytes, &chart.Title, &description, &chartType,
		&userBytes, &orgBytes, &chart.CreatedAt, &chart.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := chart.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := chart.UserID.UnmarshalBinary(userBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user UUID")
	}
	if err := chart.OrganizationID.UnmarshalBinary(orgBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal organization UUID")
	}
	chart.Description = description.String
	chart.ChartType = domain.ChartType(chartType)

	return &chart, nil
}
