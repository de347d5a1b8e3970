// Package usecase implements account listing and lookup business logic.
package usecase

import (
	"context"
	"log/slog"

	"github.com/foodnet/analytics/internal/user/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// UserRepository defines the persistence operations the use case needs.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// UserUseCase exposes read access to stored accounts.
type UserUseCase interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

type userUseCase struct {
	repo   UserRepository
	logger *slog.Logger
}

// NewUserUseCase creates a UserUseCase.
func NewUserUseCase(repo UserRepository, logger *slog.Logger) UserUseCase {
	return &userUseCase{repo: repo, logger: logger}
}

// GetByUsername retrieves a single account.
func (uc *userUseCase) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return uc.repo.GetByUsername(ctx, username)
}

// List retrieves accounts with clamped pagination.
func (uc *userUseCase) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
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
