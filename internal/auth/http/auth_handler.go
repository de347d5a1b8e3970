package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodnet/analytics/internal/auth/http/dto"
	authUseCase "github.com/foodnet/analytics/internal/auth/usecase"
	"github.com/foodnet/analytics/internal/httputil"
	userDomain "github.com/foodnet/analytics/internal/user/domain"
	customValidation "github.com/foodnet/analytics/internal/validation"
)

// UserReader loads stored accounts for the protected resource endpoint.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*userDomain.User, error)
}

// AuthHandler handles HTTP requests for login, signup and the role-gated
// demonstration endpoints.
type AuthHandler struct {
	identityUseCase authUseCase.IdentityUseCase
	users           UserReader
	logger          *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	identityUseCase authUseCase.IdentityUseCase,
	users UserReader,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		identityUseCase: identityUseCase,
		users:           users,
		logger:          logger,
	}
}

// LoginHandler verifies a form-encoded credential and issues an access token.
// POST /auth/login - No authentication required.
// Returns 200 OK with the token. Unknown accounts yield 404, wrong
// passwords 401; both failures carry a bearer challenge.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.identityUseCase.Login(c.Request.Context(), authUseCase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		// Every login failure challenges the client, including the 404 for
		// an unknown account. The 401 branch sets the same header again.
		c.Header("WWW-Authenticate", httputil.BearerChallenge)
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewTokenResponse(output))
}

// SignupHandler registers a new account and issues a token for it.
// POST /auth/signup - No authentication required.
// Returns 201 Created with the token, 400 on a duplicate username.
func (h *AuthHandler) SignupHandler(c *gin.Context) {
	var req dto.SignupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.identityUseCase.Signup(c.Request.Context(), authUseCase.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTokenResponse(output))
}

// AdminHandler greets an administrator.
// GET /auth/admin - Admin role required.
func (h *AuthHandler) AdminHandler(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("no identity in context"), h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.GreetingResponse{
		Message: fmt.Sprintf("Hello, %s! Welcome to the admin page.", identity.Username),
	})
}

// UserHandler greets a regular user.
// GET /auth/user - User role required.
func (h *AuthHandler) UserHandler(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("no identity in context"), h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.GreetingResponse{
		Message: fmt.Sprintf("Hello, %s! Welcome to the user page.", identity.Username),
	})
}

// GuestHandler greets any caller, authenticated or not.
// GET /auth/guest - Open to all roles including guests.
func (h *AuthHandler) GuestHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.GreetingResponse{
		Message: "Hello, guest! Welcome to the guest page.",
	})
}

// ProtectedResourceHandler returns account details for a username. Admins
// may look up anyone; users only themselves, which the pipeline's
// self-or-admin guard enforces before the handler runs.
// GET /auth/protected_resource/:username - Admin or user role required.
func (h *AuthHandler) ProtectedResourceHandler(c *gin.Context) {
	username := c.Param("username")

	user, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
