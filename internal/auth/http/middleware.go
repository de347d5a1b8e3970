package http

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	"github.com/foodnet/analytics/internal/auth/ratelimit"
	authUseCase "github.com/foodnet/analytics/internal/auth/usecase"
	"github.com/foodnet/analytics/internal/httputil"
)

// Pipeline builds the per-route access-control middleware. A single Pipeline
// is shared by every route so all of them charge the same rate-limit
// counters.
//
// Each guarded request goes through three stages in order:
//
//  1. Identity resolution. The bearer token (if any) is resolved exactly
//     once; a request without a token resolves to the guest identity.
//  2. Permission check against the route's allowed role set.
//  3. Rate limiting, keyed by username (or the shared guest key) and
//     charged at the identity's role tier.
//
// Stage three runs even when stage two rejects the request: a denied
// request still spends quota. When both stages fail, the permission error
// decides the response status and the Retry-After header is omitted.
type Pipeline struct {
	identities authUseCase.IdentityUseCase
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

// NewPipeline creates a Pipeline. A nil limiter disables the rate-limit
// stage, the other two stages still run.
func NewPipeline(
	identities authUseCase.IdentityUseCase,
	limiter *ratelimit.Limiter,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		identities: identities,
		limiter:    limiter,
		logger:     logger,
	}
}

// guardConfig holds per-route options applied on top of the role set.
type guardConfig struct {
	selfParam     string
	guestFallback bool
}

// GuardOption customizes a single route's guard.
type GuardOption func(*guardConfig)

// WithSelfOrAdmin restricts the route to admins or to the user whose
// username equals the named path parameter. The check runs after the role
// set allows the identity.
func WithSelfOrAdmin(param string) GuardOption {
	return func(cfg *guardConfig) {
		cfg.selfParam = param
	}
}

// WithGuestFallback downgrades an unresolvable bearer token to the guest
// identity instead of rejecting the request. Credential entry points use
// this so a stale token left in a client's default headers cannot block a
// fresh login; the request is still charged at the guest tier.
func WithGuestFallback() GuardOption {
	return func(cfg *guardConfig) {
		cfg.guestFallback = true
	}
}

// Guard returns the middleware enforcing the pipeline for one route.
func (p *Pipeline) Guard(allowed authDomain.RoleSet, opts ...GuardOption) gin.HandlerFunc {
	var cfg guardConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *gin.Context) {
		identity, resolveErr := p.resolveIdentity(c)

		if resolveErr != nil && cfg.guestFallback {
			identity = authDomain.Guest()
			resolveErr = nil
		}

		permErr := resolveErr
		if permErr == nil {
			permErr = p.checkPermission(c, identity, allowed, cfg)
		}

		// Quota is spent on every request that reached the pipeline,
		// including ones the permission stage rejected. Requests whose token
		// could not be resolved charge the guest tier.
		var limitErr error
		if p.limiter != nil {
			charged := identity
			if resolveErr != nil {
				charged = authDomain.Guest()
			}
			limitErr = p.limiter.Check(charged.RateLimitKey(), charged.Role)
			if limitErr != nil && permErr == nil {
				retryAfter := p.limiter.RetryAfter(charged.RateLimitKey(), charged.Role)
				c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			}
		}

		switch {
		case permErr != nil:
			httputil.HandleErrorGin(c, permErr, p.logger)
			c.Abort()
		case limitErr != nil:
			p.logger.Debug("rate limit exceeded",
				slog.String("key", identity.RateLimitKey()),
				slog.String("role", string(identity.Role)))
			httputil.HandleErrorGin(c, limitErr, p.logger)
			c.Abort()
		default:
			ctx := WithIdentity(c.Request.Context(), identity)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}
	}
}

// resolveIdentity extracts the bearer token and resolves it. A missing
// Authorization header yields the guest identity; a present but non-bearer
// header is an authentication failure.
func (p *Pipeline) resolveIdentity(c *gin.Context) (authDomain.Identity, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return p.identities.ResolveBearer(c.Request.Context(), "")
	}

	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		p.logger.Debug("malformed authorization header")
		return authDomain.Identity{}, authDomain.ErrUnauthenticated
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return authDomain.Identity{}, authDomain.ErrUnauthenticated
	}

	return p.identities.ResolveBearer(c.Request.Context(), token)
}

// checkPermission applies the route's role set and the optional
// self-or-admin rule. Guests denied access get an authentication error so
// clients know to present a token; authenticated identities get a
// permission error.
func (p *Pipeline) checkPermission(
	c *gin.Context,
	identity authDomain.Identity,
	allowed authDomain.RoleSet,
	cfg guardConfig,
) error {
	if !allowed.Allows(identity.Role) {
		if identity.IsGuest() {
			return authDomain.ErrUnauthenticated
		}
		p.logger.Debug("permission denied",
			slog.String("username", identity.Username),
			slog.String("role", string(identity.Role)))
		return authDomain.ErrPermissionDenied
	}

	if cfg.selfParam != "" && identity.Role != authDomain.RoleAdmin {
		if c.Param(cfg.selfParam) != identity.Username {
			p.logger.Debug("self-or-admin check failed",
				slog.String("username", identity.Username),
				slog.String("requested", c.Param(cfg.selfParam)))
			return authDomain.ErrPermissionDenied
		}
	}

	return nil
}
