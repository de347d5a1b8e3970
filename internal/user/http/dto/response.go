// Package dto provides data transfer objects for user HTTP responses.
package dto

import (
	"time"

	"github.com/foodnet/analytics/internal/user/domain"
)

// UserResponse is the public shape of a stored account.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse maps a stored account to its response shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// UserListResponse wraps a page of accounts.
type UserListResponse struct {
	Users  []UserResponse `json:"users"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// NewUserListResponse maps a page of accounts to its response shape.
func NewUserListResponse(users []*domain.User, limit, offset int) UserListResponse {
	items := make([]UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, NewUserResponse(user))
	}
	return UserListResponse{Users: items, Limit: limit, Offset: offset}
}
