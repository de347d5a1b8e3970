package usecase

import (
	"context"
	"time"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	"github.com/foodnet/analytics/internal/metrics"
)

// identityUseCaseWithMetrics decorates IdentityUseCase with metrics instrumentation.
type identityUseCaseWithMetrics struct {
	next    IdentityUseCase
	metrics metrics.BusinessMetrics
}

// NewIdentityUseCaseWithMetrics wraps an IdentityUseCase with metrics recording.
func NewIdentityUseCaseWithMetrics(useCase IdentityUseCase, m metrics.BusinessMetrics) IdentityUseCase {
	return &identityUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for credential verification operations.
func (i *identityUseCaseWithMetrics) Login(ctx context.Context, input LoginInput) (*TokenOutput, error) {
	start := time.Now()
	output, err := i.next.Login(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "auth", "login", status)
	i.metrics.RecordDuration(ctx, "auth", "login", time.Since(start), status)

	return output, err
}

// Signup records metrics for account registration operations.
func (i *identityUseCaseWithMetrics) Signup(ctx context.Context, input SignupInput) (*TokenOutput, error) {
	start := time.Now()
	output, err := i.next.Signup(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "auth", "signup", status)
	i.metrics.RecordDuration(ctx, "auth", "signup", time.Since(start), status)

	return output, err
}

// ResolveBearer records metrics for token resolution operations.
func (i *identityUseCaseWithMetrics) ResolveBearer(ctx context.Context, token string) (authDomain.Identity, error) {
	start := time.Now()
	identity, err := i.next.ResolveBearer(ctx, token)

	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "auth", "resolve_bearer", status)
	i.metrics.RecordDuration(ctx, "auth", "resolve_bearer", time.Since(start), status)

	return identity, err
}
