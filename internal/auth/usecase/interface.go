// Package usecase implements business logic orchestration for the
// authentication core: credential login, signup and bearer-token identity
// resolution.
package usecase

import (
	"context"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	userDomain "github.com/foodnet/analytics/internal/user/domain"
)

// UserStore is the persistence collaborator the auth core consumes. The
// concrete implementation lives in the user module's repositories.
type UserStore interface {
	Create(ctx context.Context, user *userDomain.User) error
	GetByUsername(ctx context.Context, username string) (*userDomain.User, error)
}

// LoginInput contains the credential submitted by the login form.
type LoginInput struct {
	Username string
	Password string
}

// SignupInput contains the data for account registration.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// TokenOutput is the issued access token returned to the client.
type TokenOutput struct {
	AccessToken string
	TokenType   string
}

// IdentityUseCase resolves raw credentials or bearer tokens into identities
// and runs the login/signup flows.
type IdentityUseCase interface {
	// Login verifies a credential and issues an access token.
	// Fails with userDomain.ErrUserNotFound when the account does not exist
	// and authDomain.ErrInvalidCredentials when the password mismatches.
	Login(ctx context.Context, input LoginInput) (*TokenOutput, error)

	// Signup registers a new account and issues an access token.
	// Fails with userDomain.ErrUserAlreadyExists for duplicate usernames.
	Signup(ctx context.Context, input SignupInput) (*TokenOutput, error)

	// ResolveBearer turns a raw bearer token into a resolved identity.
	// An empty token resolves to the guest sentinel. Token failures resolve
	// to authDomain.ErrUnauthenticated; a valid token whose subject no
	// longer exists fails with userDomain.ErrUserNotFound.
	ResolveBearer(ctx context.Context, token string) (authDomain.Identity, error)
}
