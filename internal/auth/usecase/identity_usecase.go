package usecase

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	authService "github.com/foodnet/analytics/internal/auth/service"
	userDomain "github.com/foodnet/analytics/internal/user/domain"
	appValidation "github.com/foodnet/analytics/internal/validation"
)

// identityUseCase implements IdentityUseCase.
type identityUseCase struct {
	users     UserStore
	passwords authService.PasswordService
	tokens    authService.TokenService
	logger    *slog.Logger
}

// NewIdentityUseCase creates an IdentityUseCase.
func NewIdentityUseCase(
	users UserStore,
	passwords authService.PasswordService,
	tokens authService.TokenService,
	logger *slog.Logger,
) IdentityUseCase {
	return &identityUseCase{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Login verifies the credential and issues an access token whose subject is
// the username. Unknown accounts and wrong passwords stay distinct errors
// internally; the boundary exposes only the 404/401 pair of the contract.
func (uc *identityUseCase) Login(ctx context.Context, input LoginInput) (*TokenOutput, error) {
	user, err := uc.users.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		uc.logger.Warn("login failed: user not found", slog.String("username", input.Username))
		return nil, err
	}

	if !uc.passwords.Verify(input.Password, user.PasswordHash) {
		uc.logger.Warn("login failed: password mismatch", slog.String("username", user.Username))
		return nil, authDomain.ErrInvalidCredentials
	}

	return uc.issueToken(user.Username)
}

// validateSignupInput validates the registration input. The password rule is
// checked before any hashing happens.
func (uc *identityUseCase) validateSignupInput(input SignupInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Username,
			validation.Required.Error("username is required"),
			appValidation.NotBlank,
			appValidation.Username,
			validation.Length(1, 255).Error("username must be between 1 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.When(input.Email != "", appValidation.Email),
			validation.Length(0, 255).Error("email must be at most 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Signup registers a new account with the user role and issues a token for
// it. The plaintext password is discarded right after hashing.
func (uc *identityUseCase) Signup(ctx context.Context, input SignupInput) (*TokenOutput, error) {
	if err := uc.validateSignupInput(input); err != nil {
		return nil, err
	}

	hashed, err := uc.passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(strings.ToLower(input.Email)),
		PasswordHash: hashed,
		Role:         string(authDomain.RoleUser),
	}

	if err := uc.users.Create(ctx, user); err != nil {
		uc.logger.Warn("signup failed", slog.String("username", user.Username), slog.Any("error", err))
		return nil, err
	}

	uc.logger.Info("user registered", slog.String("username", user.Username))
	return uc.issueToken(user.Username)
}

// ResolveBearer resolves a raw bearer token into an identity. The identity
// is resolved exactly once per request and shared by the permission and
// rate-limit stages; callers must not re-derive it from raw headers.
func (uc *identityUseCase) ResolveBearer(ctx context.Context, token string) (authDomain.Identity, error) {
	if token == "" {
		return authDomain.Guest(), nil
	}

	claims, err := uc.tokens.Validate(token)
	if err != nil {
		// The specific token failure is logged, the caller sees a uniform
		// authentication error.
		uc.logger.Warn("token validation failed", slog.Any("error", err))
		return authDomain.Identity{}, authDomain.ErrUnauthenticated
	}

	user, err := uc.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		// A still-valid token for a deleted account.
		uc.logger.Warn("token subject not found", slog.String("subject", claims.Subject))
		return authDomain.Identity{}, err
	}

	identity := authDomain.Identity{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}
	if role, ok := authDomain.ParseRole(user.Role); ok {
		identity.Role = role
	} else {
		// Unrecognized stored roles keep their raw value: no permission set
		// matches them and the rate limiter charges the guest tier.
		identity.Role = authDomain.Role(user.Role)
	}

	return identity, nil
}

func (uc *identityUseCase) issueToken(subject string) (*TokenOutput, error) {
	token, err := uc.tokens.Issue(subject)
	if err != nil {
		return nil, err
	}
	return &TokenOutput{AccessToken: token, TokenType: "bearer"}, nil
}
