package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/foodnet/analytics/internal/auth/domain"
	apperrors "github.com/foodnet/analytics/internal/errors"
)

// signingAlgorithm is the single system-wide JWT algorithm. Tokens naming a
// different algorithm are rejected before signature verification.
const signingAlgorithm = "HS256"

// tokenService implements TokenService with HMAC-SHA256 signed JWTs.
// Tokens are self-contained: the server holds no session table, validity is
// entirely determined by signature and expiry. Rotating the secret
// invalidates all outstanding tokens.
type tokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with the given symmetric
// secret and issuing tokens with the given TTL.
func NewTokenService(secret string, ttl time.Duration) (TokenService, error) {
	if len(secret) < 16 {
		return nil, apperrors.New("jwt secret must be at least 16 characters")
	}
	return &tokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed token carrying the subject and an expiry of
// now + TTL.
func (s *tokenService) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

// IssueWithTTL creates a signed token with an explicit TTL.
func (s *tokenService) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Validate parses and verifies a token string. It distinguishes three
// failure kinds so callers can log them separately, though all map to 401
// at the boundary:
//
//   - domain.ErrTokenExpired: the expiry is in the past
//   - domain.ErrTokenMalformed: the encoding is not parseable
//   - domain.ErrTokenInvalid: the signature does not verify (or the claims
//     are otherwise unacceptable)
//
// Validate mutates no state and is safe for concurrent use.
func (s *tokenService) Validate(tokenString string) (domain.Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, domain.ErrTokenInvalid
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{signingAlgorithm}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.Claims{}, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return domain.Claims{}, domain.ErrTokenMalformed
		default:
			return domain.Claims{}, domain.ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return domain.Claims{}, domain.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return domain.Claims{}, domain.ErrTokenInvalid
	}

	out := domain.Claims{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
