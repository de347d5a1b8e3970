// Package service provides technical services for the authentication core:
// password hashing and access token issuance/validation.
package service

import (
	"time"

	"github.com/foodnet/analytics/internal/auth/domain"
)

// PasswordService defines password hashing and verification.
// Implementations must use a salted, memory/CPU-hard algorithm and a
// constant-time comparison. A mismatch is an expected outcome reported as
// false, never as an error.
type PasswordService interface {
	// Hash hashes a plain text password. The salt is generated per call and
	// embedded in the output, so no separate salt storage is needed.
	Hash(plainPassword string) (string, error)

	// Verify reports whether the plain password matches the stored hash.
	// The comparison is constant-time with respect to the stored data.
	Verify(plainPassword string, hashedPassword string) bool
}

// TokenService defines issuance and validation of signed, expiring bearer
// tokens. Validation is pure and side-effect-free; it is safe to call
// concurrently without synchronization.
type TokenService interface {
	// Issue creates a signed token for the subject, expiring after the
	// configured TTL.
	Issue(subject string) (string, error)

	// IssueWithTTL creates a signed token with an explicit TTL. Used by
	// tests and by the create-user bootstrap command.
	IssueWithTTL(subject string, ttl time.Duration) (string, error)

	// Validate parses and verifies a token string. Failures are
	// domain.ErrTokenExpired, domain.ErrTokenMalformed or
	// domain.ErrTokenInvalid.
	Validate(tokenString string) (domain.Claims, error)
}
