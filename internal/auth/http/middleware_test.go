package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	"github.com/foodnet/analytics/internal/auth/ratelimit"
	authUseCase "github.com/foodnet/analytics/internal/auth/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockIdentityUseCase struct {
	mock.Mock
}

func (m *mockIdentityUseCase) Login(ctx context.Context, input authUseCase.LoginInput) (*authUseCase.TokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authUseCase.TokenOutput), args.Error(1)
}

func (m *mockIdentityUseCase) Signup(ctx context.Context, input authUseCase.SignupInput) (*authUseCase.TokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authUseCase.TokenOutput), args.Error(1)
}

func (m *mockIdentityUseCase) ResolveBearer(ctx context.Context, token string) (authDomain.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(authDomain.Identity), args.Error(1)
}

func testIdentity(username string, role authDomain.Role) authDomain.Identity {
	return authDomain.Identity{
		ID:       uuid.Must(uuid.NewV7()),
		Username: username,
		Role:     role,
	}
}

func newTestLimiter(t *testing.T, admin, user, guest int) *ratelimit.Limiter {
	t.Helper()
	policy := authDomain.NewRateLimitPolicy(
		authDomain.RateLimitRule{MaxRequests: admin, Window: time.Minute},
		authDomain.RateLimitRule{MaxRequests: user, Window: time.Minute},
		authDomain.RateLimitRule{MaxRequests: guest, Window: time.Minute},
	)
	limiter := ratelimit.New(policy)
	t.Cleanup(limiter.Stop)
	return limiter
}

// pipelineRouter wires a single GET route behind the pipeline guard. The
// handler reports the resolved identity so tests can assert on it.
func pipelineRouter(p *Pipeline, allowed authDomain.RoleSet, opts ...GuardOption) *gin.Engine {
	router := gin.New()
	router.GET("/resource/:username", p.Guard(allowed, opts...), func(c *gin.Context) {
		identity, ok := GetIdentity(c.Request.Context())
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no identity in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": identity.Username, "role": string(identity.Role)})
	})
	return router
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPipelineIdentityResolution(t *testing.T) {
	t.Run("missing header resolves to guest on an open route", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "").Return(authDomain.Guest(), nil)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleAdmin, authDomain.RoleUser, authDomain.RoleGuest))

		w := doRequest(router, "/resource/any", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), authDomain.GuestKey)
	})

	t.Run("bearer token resolves the identity once and stores it", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "signed-token").
			Return(testIdentity("alice", authDomain.RoleUser), nil).Once()

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleUser))

		w := doRequest(router, "/resource/alice", "Bearer signed-token")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice")
		identities.AssertExpectations(t)
	})

	t.Run("bearer scheme is case-insensitive", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "signed-token").
			Return(testIdentity("alice", authDomain.RoleUser), nil)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleUser))

		w := doRequest(router, "/resource/alice", "bearer signed-token")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-bearer scheme is rejected with a challenge", func(t *testing.T) {
		identities := new(mockIdentityUseCase)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleUser))

		w := doRequest(router, "/resource/alice", "Basic dXNlcjpwYXNz")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		identities.AssertNotCalled(t, "ResolveBearer", mock.Anything, mock.Anything)
	})

	t.Run("invalid token is rejected with a challenge", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "bad-token").
			Return(authDomain.Identity{}, authDomain.ErrUnauthenticated)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleUser))

		w := doRequest(router, "/resource/alice", "Bearer bad-token")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	})
}

func TestPipelinePermissionStage(t *testing.T) {
	t.Run("authenticated identity outside the role set gets 403", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "signed-token").
			Return(testIdentity("alice", authDomain.RoleUser), nil)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleAdmin))

		w := doRequest(router, "/resource/alice", "Bearer signed-token")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("guest outside the role set gets 401 not 403", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "").Return(authDomain.Guest(), nil)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleAdmin, authDomain.RoleUser))

		w := doRequest(router, "/resource/alice", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	})

	t.Run("self-or-admin allows the matching user", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "signed-token").
			Return(testIdentity("alice", authDomain.RoleUser), nil)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p,
			authDomain.NewRoleSet(authDomain.RoleAdmin, authDomain.RoleUser),
			WithSelfOrAdmin("username"))

		w := doRequest(router, "/resource/alice", "Bearer signed-token")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("self-or-admin denies another user's resource", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "signed-token").
			Return(testIdentity("alice", authDomain.RoleUser), nil)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p,
			authDomain.NewRoleSet(authDomain.RoleAdmin, authDomain.RoleUser),
			WithSelfOrAdmin("username"))

		w := doRequest(router, "/resource/bob", "Bearer signed-token")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("self-or-admin lets an admin read anyone", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "signed-token").
			Return(testIdentity("root", authDomain.RoleAdmin), nil)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p,
			authDomain.NewRoleSet(authDomain.RoleAdmin, authDomain.RoleUser),
			WithSelfOrAdmin("username"))

		w := doRequest(router, "/resource/bob", "Bearer signed-token")

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPipelineRateLimitStage(t *testing.T) {
	t.Run("guest tier quota is enforced with Retry-After", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "").Return(authDomain.Guest(), nil)

		p := NewPipeline(identities, newTestLimiter(t, 6, 4, 2), slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleGuest))

		assert.Equal(t, http.StatusOK, doRequest(router, "/resource/any", "").Code)
		assert.Equal(t, http.StatusOK, doRequest(router, "/resource/any", "").Code)

		w := doRequest(router, "/resource/any", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("quota is keyed per username", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "alice-token").
			Return(testIdentity("alice", authDomain.RoleUser), nil)
		identities.On("ResolveBearer", mock.Anything, "bob-token").
			Return(testIdentity("bob", authDomain.RoleUser), nil)

		p := NewPipeline(identities, newTestLimiter(t, 6, 1, 2), slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleUser))

		assert.Equal(t, http.StatusOK, doRequest(router, "/resource/alice", "Bearer alice-token").Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "/resource/alice", "Bearer alice-token").Code)
		assert.Equal(t, http.StatusOK, doRequest(router, "/resource/bob", "Bearer bob-token").Code)
	})

	t.Run("denied requests still spend quota", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "signed-token").
			Return(testIdentity("alice", authDomain.RoleUser), nil)

		limiter := newTestLimiter(t, 6, 2, 2)
		p := NewPipeline(identities, limiter, slog.Default())

		adminOnly := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleAdmin))
		open := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleUser))

		assert.Equal(t, http.StatusForbidden, doRequest(adminOnly, "/resource/any", "Bearer signed-token").Code)
		assert.Equal(t, http.StatusForbidden, doRequest(adminOnly, "/resource/any", "Bearer signed-token").Code)

		// The two rejected requests exhausted the user quota.
		assert.Equal(t, http.StatusTooManyRequests, doRequest(open, "/resource/alice", "Bearer signed-token").Code)
	})

	t.Run("permission error wins over a simultaneous limit error", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "").Return(authDomain.Guest(), nil)

		p := NewPipeline(identities, newTestLimiter(t, 6, 4, 1), slog.Default())
		open := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleGuest))
		adminOnly := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleAdmin))

		assert.Equal(t, http.StatusOK, doRequest(open, "/resource/any", "").Code)

		// Guest quota is spent but the authentication failure decides the
		// status and no Retry-After is set.
		w := doRequest(adminOnly, "/resource/any", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Header().Get("Retry-After"))
	})

	t.Run("unresolvable tokens charge the guest tier", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "bad-token").
			Return(authDomain.Identity{}, authDomain.ErrUnauthenticated)
		identities.On("ResolveBearer", mock.Anything, "").Return(authDomain.Guest(), nil)

		p := NewPipeline(identities, newTestLimiter(t, 6, 4, 2), slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleGuest))

		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/resource/any", "Bearer bad-token").Code)
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/resource/any", "Bearer bad-token").Code)

		// Both failed attempts spent the shared guest quota.
		assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "/resource/any", "").Code)
	})

	t.Run("nil limiter disables the rate-limit stage", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "").Return(authDomain.Guest(), nil)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, authDomain.NewRoleSet(authDomain.RoleGuest))

		for i := 0; i < 20; i++ {
			assert.Equal(t, http.StatusOK, doRequest(router, "/resource/any", "").Code)
		}
	})
}

func TestPipelineGuestFallback(t *testing.T) {
	everyone := authDomain.NewRoleSet(authDomain.RoleAdmin, authDomain.RoleUser, authDomain.RoleGuest)

	t.Run("stale token proceeds as guest on a credential route", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "stale-token").
			Return(authDomain.Identity{}, authDomain.ErrUnauthenticated)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, everyone, WithGuestFallback())

		w := doRequest(router, "/resource/any", "Bearer stale-token")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), authDomain.GuestKey)
	})

	t.Run("malformed authorization header proceeds as guest", func(t *testing.T) {
		identities := new(mockIdentityUseCase)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, everyone, WithGuestFallback())

		w := doRequest(router, "/resource/any", "Basic dXNlcjpwYXNz")

		assert.Equal(t, http.StatusOK, w.Code)
		identities.AssertNotCalled(t, "ResolveBearer", mock.Anything, mock.Anything)
	})

	t.Run("valid token still resolves normally", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "good-token").
			Return(testIdentity("alice", authDomain.RoleUser), nil)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, everyone, WithGuestFallback())

		w := doRequest(router, "/resource/any", "Bearer good-token")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice")
	})

	t.Run("fallback requests are charged at the guest tier", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "stale-token").
			Return(authDomain.Identity{}, authDomain.ErrUnauthenticated)

		p := NewPipeline(identities, newTestLimiter(t, 6, 4, 2), slog.Default())
		router := pipelineRouter(p, everyone, WithGuestFallback())

		assert.Equal(t, http.StatusOK, doRequest(router, "/resource/any", "Bearer stale-token").Code)
		assert.Equal(t, http.StatusOK, doRequest(router, "/resource/any", "Bearer stale-token").Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "/resource/any", "Bearer stale-token").Code)
	})

	t.Run("without the option a stale token still rejects", func(t *testing.T) {
		identities := new(mockIdentityUseCase)
		identities.On("ResolveBearer", mock.Anything, "stale-token").
			Return(authDomain.Identity{}, authDomain.ErrUnauthenticated)

		p := NewPipeline(identities, nil, slog.Default())
		router := pipelineRouter(p, everyone)

		w := doRequest(router, "/resource/any", "Bearer stale-token")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
