package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/foodnet/analytics/internal/errors"
)

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordService creates a PasswordService using Argon2id with the
// interactive policy, sized for login-path latency.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyInteractive),
	)
	if err != nil {
		// This should never happen with a valid policy
		panic(err)
	}

	return &passwordService{hasher: hasher}
}

// Hash hashes a plain text password. The output embeds the algorithm
// parameters and the per-call salt.
func (s *passwordService) Hash(plainPassword string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

// Verify performs a constant-time comparison between a plain password and
// its stored hash. Any verification error, including a corrupt stored hash,
// reports false; no partial-match information is ever returned.
func (s *passwordService) Verify(plainPassword string, hashedPassword string) bool {
	ok, err := s.hasher.Verify([]byte(plainPassword), hashedPassword)
	if err != nil {
		return false
	}
	return ok
}
