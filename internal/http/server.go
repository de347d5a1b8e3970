// Package http provides the API HTTP server, route wiring and middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	authHTTP "github.com/foodnet/analytics/internal/auth/http"
	chartHTTP "github.com/foodnet/analytics/internal/chart/http"
	"github.com/foodnet/analytics/internal/config"
	ingestHTTP "github.com/foodnet/analytics/internal/ingest/http"
	orgHTTP "github.com/foodnet/analytics/internal/organization/http"
	userHTTP "github.com/foodnet/analytics/internal/user/http"
)

// Handlers bundles the domain HTTP handlers wired into the router.
type Handlers struct {
	Auth         *authHTTP.AuthHandler
	User         *userHTTP.UserHandler
	Organization *orgHTTP.OrganizationHandler
	Chart        *chartHTTP.ChartHandler
	Upload       *ingestHTTP.UploadHandler
}

// Server represents the API HTTP server.
type Server struct {
	config *config.Config
	db     *sql.DB
	logger *slog.Logger
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new API server. SetupRouter must be called before Start.
func NewServer(cfg *config.Config, db *sql.DB, logger *slog.Logger) *Server {
	return &Server{
		config: cfg,
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin router and registers all routes behind the
// request pipeline. The metricsMiddleware and uploadThrottle arguments may be
// nil when those features are disabled.
func (s *Server) SetupRouter(
	pipeline *authHTTP.Pipeline,
	handlers Handlers,
	metricsMiddleware gin.HandlerFunc,
	uploadThrottle gin.HandlerFunc,
) {
	gin.SetMode(s.config.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		s.config.CORSEnabled, s.config.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsMiddleware != nil {
		router.Use(metricsMiddleware)
	}

	// Health endpoints sit outside the pipeline so probes are never counted
	// against any quota.
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	everyone := authDomain.NewRoleSet(authDomain.RoleAdmin, authDomain.RoleUser, authDomain.RoleGuest)
	adminOnly := authDomain.NewRoleSet(authDomain.RoleAdmin)
	userOnly := authDomain.NewRoleSet(authDomain.RoleUser)
	authenticated := authDomain.NewRoleSet(authDomain.RoleAdmin, authDomain.RoleUser)

	auth := router.Group("/auth")
	{
		// Credential entry points must stay reachable with a stale token in
		// the Authorization header; unresolvable tokens fall back to guest.
		auth.POST("/login",
			pipeline.Guard(everyone, authHTTP.WithGuestFallback()), handlers.Auth.LoginHandler)
		auth.POST("/signup",
			pipeline.Guard(everyone, authHTTP.WithGuestFallback()), handlers.Auth.SignupHandler)
		auth.GET("/admin", pipeline.Guard(adminOnly), handlers.Auth.AdminHandler)
		auth.GET("/user", pipeline.Guard(userOnly), handlers.Auth.UserHandler)
		auth.GET("/guest", pipeline.Guard(everyone), handlers.Auth.GuestHandler)
		auth.GET("/protected_resource/:username",
			pipeline.Guard(authenticated, authHTTP.WithSelfOrAdmin("username")),
			handlers.Auth.ProtectedResourceHandler)
	}

	users := router.Group("/users")
	{
		users.GET("", pipeline.Guard(adminOnly), handlers.User.ListUsersHandler)
		users.GET("/:username",
			pipeline.Guard(authenticated, authHTTP.WithSelfOrAdmin("username")),
			handlers.User.GetUserHandler)
	}

	organizations := router.Group("/organizations")
	{
		organizations.POST("", pipeline.Guard(adminOnly), handlers.Organization.CreateOrganizationHandler)
		organizations.GET("", pipeline.Guard(authenticated), handlers.Organization.ListOrganizationsHandler)
		organizations.GET("/:id", pipeline.Guard(authenticated), handlers.Organization.GetOrganizationHandler)
	}

	charts := router.Group("/charts")
	{
		charts.POST("", pipeline.Guard(authenticated), handlers.Chart.CreateChartHandler)
		charts.GET("", pipeline.Guard(authenticated), handlers.Chart.ListChartsHandler)
		charts.GET("/:id", pipeline.Guard(authenticated), handlers.Chart.GetChartHandler)
		charts.POST("/generate", pipeline.Guard(authenticated), handlers.Chart.GenerateChartHandler)
	}

	upload := router.Group("/upload")
	{
		uploadChain := []gin.HandlerFunc{pipeline.Guard(authenticated)}
		if uploadThrottle != nil {
			uploadChain = append(uploadChain, uploadThrottle)
		}
		uploadChain = append(uploadChain, handlers.Upload.UploadCSVHandler)
		upload.POST("/csv", uploadChain...)
	}

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not initialized: call SetupRouter first")
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness to serve traffic, including database
// connectivity.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil {
		components["database"] = "error"
	} else if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
	}

	if components["database"] != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
