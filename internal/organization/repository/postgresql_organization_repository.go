// Package repository provides data persistence implementations for organizations.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/foodnet/analytics/internal/database"
	"github.com/foodnet/analytics/internal/organization/domain"

	apperrors "github.com/foodnet/analytics/internal/errors"
)

// PostgreSQLOrganizationRepository handles organization persistence for PostgreSQL.
type PostgreSQLOrganizationRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrganizationRepository creates a new PostgreSQLOrganizationRepository.
func NewPostgreSQLOrganizationRepository(db *sql.DB) *PostgreSQLOrganizationRepository {
	return &PostgreSQLOrganizationRepository{
		db: db,
	}
}

// Create inserts a new organization.
func (r *PostgreSQLOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO organizations (id, name, iiko_api_key, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, org.ID, org.Name, nullableString(org.IikoAPIKey))
	if err != nil {
		// Duplicate name
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrOrganizationAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create organization")
	}
	return nil
}

// GetByID retrieves an organization by ID.
func (r *PostgreSQLOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	var org domain.Organization
	var apiKey sql.NullString
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, iiko_api_key, created_at, updated_at
			  FROM organizations WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &apiKey, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get organization by id")
	}
	org.IikoAPIKey = apiKey.String

	return &org, nil
}

// List retrieves organizations ordered by name with limit/offset pagination.
func (r *PostgreSQLOrganizationRepository) List(ctx context.Context, limit, offset int) ([]*domain.Organization, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, iiko_api_key, created_at, updated_at
			  FROM organizations ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list organizations")
	}
	defer rows.Close()

	var orgs []*domain.Organization
	for rows.Next() {
		var org domain.Organization
		var apiKey sql.NullString
		if err := rows.Scan(&org.ID, &org.Name, &apiKey, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan organization")
		}
		org.IikoAPIKey = apiKey.String
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate organizations")
	}

	return orgs, nil
}

// nullableString maps an empty string to NULL for optional columns.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
