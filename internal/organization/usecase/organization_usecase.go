// Package usecase implements organization management business logic.
package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/foodnet/analytics/internal/organization/domain"
	customValidation "github.com/foodnet/analytics/internal/validation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// OrganizationRepository defines the persistence operations the use case needs.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Organization, error)
}

// CreateOrganizationInput carries the parameters for creating an organization.
type CreateOrganizationInput struct {
	Name       string
	IikoAPIKey string
}

// OrganizationUseCase exposes organization management operations.
type OrganizationUseCase interface {
	Create(ctx context.Context, input CreateOrganizationInput) (*domain.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Organization, error)
}

type organizationUseCase struct {
	repo   OrganizationRepository
	logger *slog.Logger
}

// NewOrganizationUseCase creates an OrganizationUseCase.
func NewOrganizationUseCase(repo OrganizationRepository, logger *slog.Logger) OrganizationUseCase {
	return &organizationUseCase{repo: repo, logger: logger}
}

// Create validates and stores a new organization.
func (uc *organizationUseCase) Create(ctx context.Context, input CreateOrganizationInput) (*domain.Organization, error) {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			customValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.IikoAPIKey,
			validation.Length(0, 255).Error("iiko api key must be at most 255 characters"),
		),
	)
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	org := &domain.Organization{
		ID:         uuid.Must(uuid.NewV7()),
		Name:       input.Name,
		IikoAPIKey: input.IikoAPIKey,
	}

	if err := uc.repo.Create(ctx, org); err != nil {
		return nil, err
	}

	uc.logger.Info("organization created",
		slog.String("id", org.ID.String()),
		slog.String("name", org.Name))
	return org, nil
}

// GetByID retrieves a single organization.
func (uc *organizationUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	return uc.repo.GetByID(ctx, id)
}

// List retrieves organizations with clamped pagination.
func (uc *organizationUseCase) List(ctx context.Context, limit, offset int) ([]*domain.Organization, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.List(ctx, limit, offset)
}
