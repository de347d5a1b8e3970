package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	"github.com/foodnet/analytics/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordRows(ctx context.Context, operation string, rows int) {
	m.Called(ctx, operation, rows)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

// mockIdentityUseCase is a mock implementation of IdentityUseCase for decorator tests.
type mockIdentityUseCase struct {
	mock.Mock
}

func (m *mockIdentityUseCase) Login(ctx context.Context, input LoginInput) (*TokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TokenOutput), args.Error(1)
}

func (m *mockIdentityUseCase) Signup(ctx context.Context, input SignupInput) (*TokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TokenOutput), args.Error(1)
}

func (m *mockIdentityUseCase) ResolveBearer(ctx context.Context, token string) (authDomain.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(authDomain.Identity), args.Error(1)
}

func TestIdentityMetricsDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("login records success metrics", func(t *testing.T) {
		next := &mockIdentityUseCase{}
		m := &mockBusinessMetrics{}

		input := LoginInput{Username: "alice", Password: "s3cret-pass"}
		next.On("Login", ctx, input).
			Return(&TokenOutput{AccessToken: "token", TokenType: "bearer"}, nil).Once()
		m.On("RecordOperation", ctx, "auth", "login", "success").Once()
		m.On("RecordDuration", ctx, "auth", "login", mock.Anything, "success").Once()

		decorated := NewIdentityUseCaseWithMetrics(next, m)
		output, err := decorated.Login(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, "token", output.AccessToken)
		m.AssertExpectations(t)
	})

	t.Run("login records error metrics", func(t *testing.T) {
		next := &mockIdentityUseCase{}
		m := &mockBusinessMetrics{}

		input := LoginInput{Username: "alice", Password: "wrong"}
		next.On("Login", ctx, input).Return(nil, authDomain.ErrInvalidCredentials).Once()
		m.On("RecordOperation", ctx, "auth", "login", "error").Once()
		m.On("RecordDuration", ctx, "auth", "login", mock.Anything, "error").Once()

		decorated := NewIdentityUseCaseWithMetrics(next, m)
		_, err := decorated.Login(ctx, input)

		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		m.AssertExpectations(t)
	})

	t.Run("signup records metrics", func(t *testing.T) {
		next := &mockIdentityUseCase{}
		m := &mockBusinessMetrics{}

		input := SignupInput{Username: "bob", Password: "s3cret-pass"}
		next.On("Signup", ctx, input).
			Return(&TokenOutput{AccessToken: "token", TokenType: "bearer"}, nil).Once()
		m.On("RecordOperation", ctx, "auth", "signup", "success").Once()
		m.On("RecordDuration", ctx, "auth", "signup", mock.Anything, "success").Once()

		decorated := NewIdentityUseCaseWithMetrics(next, m)
		_, err := decorated.Signup(ctx, input)

		assert.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("resolve bearer records metrics", func(t *testing.T) {
		next := &mockIdentityUseCase{}
		m := &mockBusinessMetrics{}

		identity := authDomain.Identity{Username: "alice", Role: authDomain.RoleUser}
		next.On("ResolveBearer", ctx, "token").Return(identity, nil).Once()
		m.On("RecordOperation", ctx, "auth", "resolve_bearer", "success").Once()
		m.On("RecordDuration", ctx, "auth", "resolve_bearer", mock.Anything, "success").Once()

		decorated := NewIdentityUseCaseWithMetrics(next, m)
		got, err := decorated.ResolveBearer(ctx, "token")

		assert.NoError(t, err)
		assert.Equal(t, identity, got)
		m.AssertExpectations(t)
	})
}
