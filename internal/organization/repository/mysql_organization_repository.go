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

// MySQLOrganizationRepository handles organization persistence for MySQL.
type MySQLOrganizationRepository struct {
	db *sql.DB
}

// NewMySQLOrganizationRepository creates a new MySQLOrganizationRepository.
func NewMySQLOrganizationRepository(db *sql.DB) *MySQLOrganizationRepository {
	return &MySQLOrganizationRepository{
		db: db,
	}
}

// Create inserts a new organization.
func (r *MySQLOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO organizations (id, name, iiko_api_key, created_at, updated_at)
			  VALUES (?, ?, ?, NOW(), NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := org.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, uuidBytes, org.Name, nullableString(org.IikoAPIKey))
	if err != nil {
		// Duplicate name
		if isMySQLUniqueViolation(err) {
			return domain.ErrOrganizationAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create organization")
	}
	return nil
}

// GetByID retrieves an organization by ID.
func (r *MySQLOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	var org domain.Organization
	var apiKey sql.NullString
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, iiko_api_key, created_at, updated_at
			  FROM organizations WHERE id = ?`

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	var idBytes []byte
	err = querier.QueryRowContext(ctx, query, uuidBytes).Scan(
		&idBytes, &org.Name, &apiKey, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get organization by id")
	}
	org.IikoAPIKey = apiKey.String

	// Convert bytes back to UUID
	if err := org.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	return &org, nil
}

// List retrieves organizations ordered by name with limit/offset pagination.
func (r *MySQLOrganizationRepository) List(ctx context.Context, limit, offset int) ([]*domain.Organization, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, iiko_api_key, created_at, updated_at
			  FROM organizations ORDER BY name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list organizations")
	}
	defer rows.Close()

	var orgs []*domain.Organization
	for rows.Next() {
		var org domain.Organization
		var apiKey sql.NullString
		var idBytes []byte
		if err := rows.Scan(&idBytes, &org.Name, &apiKey, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan organization")
		}
		if err := org.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		org.IikoAPIKey = apiKey.String
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate organizations")
	}

	return orgs, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
