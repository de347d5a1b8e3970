// Package http provides HTTP handlers for account listing and lookup.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodnet/analytics/internal/httputil"
	"github.com/foodnet/analytics/internal/user/http/dto"
	userUseCase "github.com/foodnet/analytics/internal/user/usecase"
)

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	userUseCase userUseCase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase userUseCase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// ListUsersHandler returns a page of accounts.
// GET /users - Admin role required.
func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	limit, err := parseQueryInt(c, "limit", 0)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	offset, err := parseQueryInt(c, "offset", 0)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	users, err := h.userUseCase.List(c.Request.Context(), limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserListResponse(users, limit, offset))
}

// GetUserHandler returns a single account by username.
// GET /users/:username - Admin role, or the account owner.
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	user, err := h.userUseCase.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// parseQueryInt reads an optional integer query parameter.
func parseQueryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
