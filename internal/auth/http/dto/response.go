package dto

import (
	"time"

	authUseCase "github.com/foodnet/analytics/internal/auth/usecase"
	userDomain "github.com/foodnet/analytics/internal/user/domain"
)

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewTokenResponse maps a use case token output to its response shape.
func NewTokenResponse(output *authUseCase.TokenOutput) TokenResponse {
	return TokenResponse{
		AccessToken: output.AccessToken,
		TokenType:   output.TokenType,
	}
}

// GreetingResponse is returned by the role-gated greeting endpoints.
type GreetingResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public shape of a stored account. The password hash
// never leaves the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse maps a stored account to its response shape.
func NewUserResponse(user *userDomain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
