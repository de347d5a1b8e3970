// Package domain defines the identity, role and access-control domain models.
// Roles form a closed enumeration; every role-dependent decision in the
// pipeline switches exhaustively over it.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the coarse authorization tier of an identity.
type Role string

const (
	// RoleAdmin may act on any resource.
	RoleAdmin Role = "admin"

	// RoleUser may act on its own resources.
	RoleUser Role = "user"

	// RoleGuest is the sentinel tier for unauthenticated callers. It exists
	// only for rate-limit keying and for endpoints open to anonymous access.
	RoleGuest Role = "guest"
)

// ParseRole converts a stored role string into a Role.
// Unknown values report false; callers fall back to the guest tier.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser, RoleGuest:
		return Role(s), true
	default:
		return "", false
	}
}

// GuestKey is the rate-limit key shared by all unauthenticated callers.
// User names are validated to never start with an underscore, so the
// sentinel cannot collide with a real account.
const GuestKey = "_guest"

// Identity is the resolved principal acting in a request. It is immutable
// once resolved: the permission and rate-limit stages must observe the same
// value, never re-resolve from raw headers.
type Identity struct {
	ID           uuid.UUID
	Username     string
	Email        string
	Role         Role
	PasswordHash string
}

// Guest returns the sentinel identity used when no valid token is present.
func Guest() Identity {
	return Identity{Username: GuestKey, Role: RoleGuest}
}

// IsGuest reports whether the identity is the unauthenticated sentinel.
func (i Identity) IsGuest() bool {
	return i.Role == RoleGuest && i.Username == GuestKey
}

// RateLimitKey returns the key quota is tracked against: the username for
// authenticated identities, the guest sentinel otherwise.
func (i Identity) RateLimitKey() string {
	if i.IsGuest() {
		return GuestKey
	}
	return i.Username
}

// Credential carries a login form's raw username and password. It is
// ephemeral: never persisted, discarded after verification.
type Credential struct {
	Username string
	Password string
}

// Claims is the validated payload of an access token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
