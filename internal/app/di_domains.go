package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	authDomain "github.com/foodnet/analytics/internal/auth/domain"
	authHTTP "github.com/foodnet/analytics/internal/auth/http"
	"github.com/foodnet/analytics/internal/auth/ratelimit"
	authService "github.com/foodnet/analytics/internal/auth/service"
	authUseCase "github.com/foodnet/analytics/internal/auth/usecase"
	chartHTTP "github.com/foodnet/analytics/internal/chart/http"
	chartRepository "github.com/foodnet/analytics/internal/chart/repository"
	chartService "github.com/foodnet/analytics/internal/chart/service"
	chartUseCase "github.com/foodnet/analytics/internal/chart/usecase"
	"github.com/foodnet/analytics/internal/http"
	ingestHTTP "github.com/foodnet/analytics/internal/ingest/http"
	ingestRepository "github.com/foodnet/analytics/internal/ingest/repository"
	ingestUseCase "github.com/foodnet/analytics/internal/ingest/usecase"
	orgHTTP "github.com/foodnet/analytics/internal/organization/http"
	orgRepository "github.com/foodnet/analytics/internal/organization/repository"
	orgUseCase "github.com/foodnet/analytics/internal/organization/usecase"
	userHTTP "github.com/foodnet/analytics/internal/user/http"
	userRepository "github.com/foodnet/analytics/internal/user/repository"
	userUseCase "github.com/foodnet/analytics/internal/user/usecase"
)

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (userUseCase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.userRepo = userRepository.NewMySQLUserRepository(db)
		case "postgres":
			c.userRepo = userRepository.NewPostgreSQLUserRepository(db)
		default:
			c.initErrors["userRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// OrganizationRepository returns the organization repository instance.
func (c *Container) OrganizationRepository() (orgUseCase.OrganizationRepository, error) {
	c.orgRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["orgRepo"] = fmt.Errorf("failed to get database for organization repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.orgRepo = orgRepository.NewMySQLOrganizationRepository(db)
		case "postgres":
			c.orgRepo = orgRepository.NewPostgreSQLOrganizationRepository(db)
		default:
			c.initErrors["orgRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["orgRepo"]; exists {
		return nil, storedErr
	}
	return c.orgRepo, nil
}

// ChartRepository returns the chart repository instance.
func (c *Container) ChartRepository() (chartUseCase.ChartRepository, error) {
	c.chartRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["chartRepo"] = fmt.Errorf("failed to get database for chart repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.chartRepo = chartRepository.NewMySQLChartRepository(db)
		case "postgres":
			c.chartRepo = chartRepository.NewPostgreSQLChartRepository(db)
		default:
			c.initErrors["chartRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["chartRepo"]; exists {
		return nil, storedErr
	}
	return c.chartRepo, nil
}

// DatasetRepository returns the dataset repository instance.
func (c *Container) DatasetRepository() (ingestUseCase.DatasetRepository, error) {
	c.datasetRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["datasetRepo"] = fmt.Errorf("failed to get database for dataset repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.datasetRepo = ingestRepository.NewMySQLDatasetRepository(db)
		case "postgres":
			c.datasetRepo = ingestRepository.NewPostgreSQLDatasetRepository(db)
		default:
			c.initErrors["datasetRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["datasetRepo"]; exists {
		return nil, storedErr
	}
	return c.datasetRepo, nil
}

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}

// TokenService returns the access token service.
func (c *Container) TokenService() (authService.TokenService, error) {
	c.tokenServiceInit.Do(func() {
		service, err := authService.NewTokenService(c.config.JWTSecret, c.config.JWTAccessTokenTTL)
		if err != nil {
			c.initErrors["tokenService"] = fmt.Errorf("failed to create token service: %w", err)
			return
		}
		c.tokenService = service
	})
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// IdentityUseCase returns the identity use case instance, decorated with
// business metrics.
func (c *Container) IdentityUseCase() (authUseCase.IdentityUseCase, error) {
	c.identityUseCaseInit.Do(func() {
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["identityUseCase"] = fmt.Errorf("failed to get user repository for identity use case: %w", err)
			return
		}

		tokenService, err := c.TokenService()
		if err != nil {
			c.initErrors["identityUseCase"] = fmt.Errorf("failed to get token service for identity use case: %w", err)
			return
		}

		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["identityUseCase"] = fmt.Errorf("failed to get business metrics for identity use case: %w", err)
			return
		}

		useCase := authUseCase.NewIdentityUseCase(userRepo, c.PasswordService(), tokenService, c.Logger())
		c.identityUseCase = authUseCase.NewIdentityUseCaseWithMetrics(useCase, bm)
	})
	if storedErr, exists := c.initErrors["identityUseCase"]; exists {
		return nil, storedErr
	}
	return c.identityUseCase, nil
}

// UserUseCase returns the user use case instance.
func (c *Container) UserUseCase() (userUseCase.UserUseCase, error) {
	c.userUCInit.Do(func() {
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["userUseCase"] = fmt.Errorf("failed to get user repository for user use case: %w", err)
			return
		}
		c.userUC = userUseCase.NewUserUseCase(userRepo, c.Logger())
	})
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUC, nil
}

// OrganizationUseCase returns the organization use case instance.
func (c *Container) OrganizationUseCase() (orgUseCase.OrganizationUseCase, error) {
	c.orgUCInit.Do(func() {
		orgRepo, err := c.OrganizationRepository()
		if err != nil {
			c.initErrors["orgUseCase"] = fmt.Errorf("failed to get organization repository for organization use case: %w", err)
			return
		}
		c.orgUC = orgUseCase.NewOrganizationUseCase(orgRepo, c.Logger())
	})
	if storedErr, exists := c.initErrors["orgUseCase"]; exists {
		return nil, storedErr
	}
	return c.orgUC, nil
}

// ChartUseCase returns the chart use case instance.
func (c *Container) ChartUseCase() (chartUseCase.ChartUseCase, error) {
	c.chartUCInit.Do(func() {
		chartRepo, err := c.ChartRepository()
		if err != nil {
			c.initErrors["chartUseCase"] = fmt.Errorf("failed to get chart repository for chart use case: %w", err)
			return
		}

		orgRepo, err := c.OrganizationRepository()
		if err != nil {
			c.initErrors["chartUseCase"] = fmt.Errorf("failed to get organization repository for chart use case: %w", err)
			return
		}

		c.chartUC = chartUseCase.NewChartUseCase(chartRepo, orgRepo, chartService.NewChartGenerator(), c.Logger())
	})
	if storedErr, exists := c.initErrors["chartUseCase"]; exists {
		return nil, storedErr
	}
	return c.chartUC, nil
}

// UploadUseCase returns the CSV upload use case instance, decorated with
// business metrics.
func (c *Container) UploadUseCase() (ingestUseCase.UploadUseCase, error) {
	c.uploadUCInit.Do(func() {
		datasetRepo, err := c.DatasetRepository()
		if err != nil {
			c.initErrors["uploadUseCase"] = fmt.Errorf("failed to get dataset repository for upload use case: %w", err)
			return
		}

		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["uploadUseCase"] = fmt.Errorf("failed to get tx manager for upload use case: %w", err)
			return
		}

		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["uploadUseCase"] = fmt.Errorf("failed to get business metrics for upload use case: %w", err)
			return
		}

		useCase := ingestUseCase.NewUploadUseCase(datasetRepo, txManager, c.config.UploadMaxBytes, c.Logger())
		c.uploadUC = ingestUseCase.NewUploadUseCaseWithMetrics(useCase, bm)
	})
	if storedErr, exists := c.initErrors["uploadUseCase"]; exists {
		return nil, storedErr
	}
	return c.uploadUC, nil
}

// RateLimiter returns the fixed-window request limiter, or nil when rate
// limiting is disabled.
func (c *Container) RateLimiter() *ratelimit.Limiter {
	c.limiterInit.Do(func() {
		if !c.config.RateLimitEnabled {
			return
		}
		policy := authDomain.NewRateLimitPolicy(
			authDomain.RateLimitRule{MaxRequests: c.config.RateLimitAdminMaxRequests, Window: c.config.RateLimitWindow},
			authDomain.RateLimitRule{MaxRequests: c.config.RateLimitUserMaxRequests, Window: c.config.RateLimitWindow},
			authDomain.RateLimitRule{MaxRequests: c.config.RateLimitGuestMaxRequests, Window: c.config.RateLimitWindow},
		)
		c.limiter = ratelimit.New(policy)
	})
	return c.limiter
}

// Pipeline returns the request pipeline guarding all API routes.
func (c *Container) Pipeline() (*authHTTP.Pipeline, error) {
	c.pipelineInit.Do(func() {
		identityUC, err := c.IdentityUseCase()
		if err != nil {
			c.initErrors["pipeline"] = fmt.Errorf("failed to get identity use case for pipeline: %w", err)
			return
		}
		c.pipeline = authHTTP.NewPipeline(identityUC, c.RateLimiter(), c.Logger())
	})
	if storedErr, exists := c.initErrors["pipeline"]; exists {
		return nil, storedErr
	}
	return c.pipeline, nil
}

// handlers assembles the domain HTTP handlers for router wiring.
func (c *Container) handlers() (http.Handlers, error) {
	identityUC, err := c.IdentityUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get identity use case for handlers: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get user repository for handlers: %w", err)
	}

	userUC, err := c.UserUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get user use case for handlers: %w", err)
	}

	orgUC, err := c.OrganizationUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get organization use case for handlers: %w", err)
	}

	chartUC, err := c.ChartUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get chart use case for handlers: %w", err)
	}

	uploadUC, err := c.UploadUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get upload use case for handlers: %w", err)
	}

	logger := c.Logger()

	return http.Handlers{
		Auth:         authHTTP.NewAuthHandler(identityUC, userRepo, logger),
		User:         userHTTP.NewUserHandler(userUC, logger),
		Organization: orgHTTP.NewOrganizationHandler(orgUC, logger),
		Chart:        chartHTTP.NewChartHandler(chartUC, logger),
		Upload:       ingestHTTP.NewUploadHandler(uploadUC, logger),
	}, nil
}

// uploadThrottle builds the CSV upload throttle middleware, or nil when the
// throttle is disabled.
func (c *Container) uploadThrottle() gin.HandlerFunc {
	if c.config.UploadRatePerSec <= 0 {
		return nil
	}
	return ingestHTTP.UploadThrottleMiddleware(c.config.UploadRatePerSec, c.config.UploadBurst, c.Logger())
}
