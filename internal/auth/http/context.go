// Package http provides the HTTP access-control pipeline and handlers for
// login, signup and role-gated endpoints.
package http

import (
	"context"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
)

// identityKey is a context key type for storing resolved identities.
type identityKey struct{}

// WithIdentity stores a resolved identity in the context.
// This is called by the pipeline middleware after identity resolution.
func WithIdentity(ctx context.Context, identity authDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the resolved identity from the context.
// Returns (identity, true) if one is present, or (zero, false) if no identity
// was set. Handlers behind the pipeline read the identity from here and never
// re-derive it from raw headers.
func GetIdentity(ctx context.Context) (authDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(authDomain.Identity)
	return identity, ok
}
