// Package usecase implements chart management and generation business logic.
package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/foodnet/analytics/internal/chart/domain"
	chartService "github.com/foodnet/analytics/internal/chart/service"
	orgDomain "github.com/foodnet/analytics/internal/organization/domain"
	customValidation "github.com/foodnet/analytics/internal/validation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// ChartRepository defines the persistence operations the use case needs.
type ChartRepository interface {
	Create(ctx context.Context, chart *domain.Chart) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chart, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Chart, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*domain.Chart, error)
}

// OrganizationReader verifies chart ownership references.
type OrganizationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*orgDomain.Organization, error)
}

// CreateChartInput carries the parameters for saving a chart.
type CreateChartInput struct {
	Title          string
	Description    string
	ChartType      string
	UserID         uuid.UUID
	OrganizationID uuid.UUID
}

// ChartUseCase exposes chart management and document generation.
type ChartUseCase interface {
	Create(ctx context.Context, input CreateChartInput) (*domain.Chart, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chart, error)
	List(ctx context.Context, orgID *uuid.UUID, limit, offset int) ([]*domain.Chart, error)
	Generate(ctx context.Context, input chartService.GenerateInput) (map[string]any, error)
}

type chartUseCase struct {
	repo      ChartRepository
	orgs      OrganizationReader
	generator *chartService.ChartGenerator
	logger    *slog.Logger
}

// NewChartUseCase creates a ChartUseCase.
func NewChartUseCase(
	repo ChartRepository,
	orgs OrganizationReader,
	generator *chartService.ChartGenerator,
	logger *slog.Logger,
) ChartUseCase {
	return &chartUseCase{
		repo:      repo,
		orgs:      orgs,
		generator: generator,
		logger:    logger,
	}
}

// Create validates and stores a new chart. The referenced organization must
// exist.
func (uc *chartUseCase) Create(ctx context.Context, input CreateChartInput) (*domain.Chart, error) {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Title,
			validation.Required.Error("title is required"),
			customValidation.NotBlank,
			validation.Length(1, 255).Error("title must be between 1 and 255 characters"),
		),
		validation.Field(&input.Description,
			validation.Length(0, 1024).Error("description must be at most 1024 characters"),
		),
		validation.Field(&input.ChartType,
			validation.Required.Error("chart_type is required"),
		),
	)
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	chartType, ok := domain.ParseChartType(input.ChartType)
	if !ok {
		return nil, domain.ErrUnsupportedChartType
	}

	if _, err := uc.orgs.GetByID(ctx, input.OrganizationID); err != nil {
		return nil, err
	}

	chart := &domain.Chart{
		ID:             uuid.Must(uuid.NewV7()),
		Title:          input.Title,
		Description:    input.Description,
		ChartType:      chartType,
		UserID:         input.UserID,
		OrganizationID: input.OrganizationID,
	}

	if err := uc.repo.Create(ctx, chart); err != nil {
		return nil, err
	}

	uc.logger.Info("chart created",
		slog.String("id", chart.ID.String()),
		slog.String("chart_type", string(chart.ChartType)))
	return chart, nil
}

// GetByID retrieves a single chart.
func (uc *chartUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chart, error) {
	return uc.repo.GetByID(ctx, id)
}

// List retrieves charts with clamped pagination, optionally scoped to one
// organization.
func (uc *chartUseCase) List(ctx context.Context, orgID *uuid.UUID, limit, offset int) ([]*domain.Chart, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	if orgID != nil {
		return uc.repo.ListByOrganization(ctx, *orgID, limit, offset)
	}
	return uc.repo.List(ctx, limit, offset)
}

// Generate builds a chart document without persisting anything.
func (uc *chartUseCase) Generate(ctx context.Context, input chartService.GenerateInput) (map[string]any, error) {
	doc, err := uc.generator.Generate(input)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("chart document generated",
		slog.String("chart_type", string(input.ChartType)),
		slog.Int("rows", len(input.Data)))
	return doc, nil
}
