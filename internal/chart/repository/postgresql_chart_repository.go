// Package repository provides data persistence implementations for charts.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
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

// PostgreSQLChartRepository handles chart persistence for PostgreSQL.
type PostgreSQLChartRepository struct {
	db *sql.DB
}

// NewPostgreSQLChartRepository creates a new PostgreSQLChartRepository.
func NewPostgreSQLChartRepository(db *sql.DB) *PostgreSQLChartRepository {
	return &PostgreSQLChartRepository{
		db: db,
	}
}

// Create inserts a new chart.
func (r *PostgreSQLChartRepository) Create(ctx context.Context, chart *domain.Chart) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO charts (id, title, description, chart_type, user_id, organization_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		chart.ID, chart.Title, nullableDescription(chart.Description),
		string(chart.ChartType), chart.UserID, chart.OrganizationID)
	if err != nil {
		return apperrors.Wrap(err, "failed to create chart")
	}
	return nil
}

// GetByID retrieves a chart by ID.
func (r *PostgreSQLChartRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chart, error) {
	var chart domain.Chart
	var description sql.NullString
	var chartType string
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, title, description, chart_type, user_id, organization_id, created_at, updated_at
			  FROM charts WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&chart.ID, &chart.Title, &description, &chartType,
		&chart.UserID, &chart.OrganizationID, &chart.CreatedAt, &chart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChartNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get chart by id")
	}
	chart.Description = description.String
	chart.ChartType = domain.ChartType(chartType)

	return &chart, nil
}

// List retrieves charts newest-first with limit/offset pagination.
func (r *PostgreSQLChartRepository) List(ctx context.Context, limit, offset int) ([]*domain.Chart, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, title, description, chart_type, user_id, organization_id, created_at, updated_at
			  FROM charts ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list charts")
	}
	defer rows.Close()

	return scanCharts(rows)
}

// ListByOrganization retrieves an organization's charts newest-first.
func (r *PostgreSQLChartRepository) ListByOrganization(
	ctx context.Context,
	orgID uuid.UUID,
	limit, offset int,
) ([]*domain.Chart, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, title, description, chart_type, user_id, organization_id, created_at, updated_at
			  FROM charts WHERE organization_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list charts by organization")
	}
	defer rows.Close()

	return scanCharts(rows)
}

// scanCharts reads chart rows with native UUID columns.
func scanCharts(rows *sql.Rows) ([]*domain.Chart, error) {
	var charts []*domain.Chart
	for rows.Next() {
		var chart domain.Chart
		var description sql.NullString
		var chartType string
		if err := rows.Scan(
			&chart.ID, &chart.Title, &description, &chartType,
			&chart.UserID, &chart.OrganizationID, &chart.CreatedAt, &chart.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan chart")
		}
		chart.Description = description.String
		chart.ChartType = domain.ChartType(chartType)
		charts = append(charts, &chart)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate charts")
	}

	return charts, nil
}

// nullableDescription maps an empty description to NULL.
func nullableDescription(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
