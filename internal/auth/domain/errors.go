package domain

import (
	"github.com/foodnet/analytics/internal/errors"
)

// Authentication and authorization errors. Each remains distinct for
// logging; the HTTP layer collapses them onto the statuses of the external
// contract.
var (
	// ErrInvalidCredentials indicates a password mismatch during login.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrTokenExpired indicates the token's expiry is in the past.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrTokenMalformed indicates the token encoding is not parseable.
	ErrTokenMalformed = errors.Wrap(errors.ErrUnauthorized, "token malformed")

	// ErrTokenInvalid indicates the token signature does not verify.
	ErrTokenInvalid = errors.Wrap(errors.ErrUnauthorized, "token invalid")

	// ErrUnauthenticated indicates a protected operation was attempted
	// without a resolvable authenticated identity.
	ErrUnauthenticated = errors.Wrap(errors.ErrUnauthorized, "authentication required")

	// ErrPermissionDenied indicates the resolved identity's role is not in
	// the operation's allowed set.
	ErrPermissionDenied = errors.Wrap(errors.ErrForbidden, "access denied")

	// ErrRateLimitExceeded indicates the identity exhausted its window quota.
	ErrRateLimitExceeded = errors.Wrap(errors.ErrRateLimited, "request quota exceeded")
)
