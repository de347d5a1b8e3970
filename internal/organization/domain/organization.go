// Package domain defines the organization entity.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/foodnet/analytics/internal/errors"
)

// Organization is a tenant whose charts and data live in the platform. The
// iiko API key, when present, links the organization to its POS account.
type Organization struct {
	ID         uuid.UUID
	Name       string
	IikoAPIKey string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	// ErrOrganizationNotFound indicates the organization does not exist.
	ErrOrganizationNotFound = apperrors.Wrap(apperrors.ErrNotFound, "organization not found")

	// ErrOrganizationAlreadyExists indicates a duplicate organization name.
	ErrOrganizationAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "organization already exists")
)
