package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/foodnet/analytics/internal/app"
	"github.com/foodnet/analytics/internal/config"
	appHTTP "github.com/foodnet/analytics/internal/http"
)

// RunServer starts the API server (and the metrics server when enabled) with
// graceful shutdown support. Blocks until receiving SIGINT/SIGTERM or until a
// server fails. On shutdown, both servers get DBConnMaxLifetime to drain.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	// Initializing the API server pulls in the whole dependency graph.
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// A failing server cancels the group context, which doubles as the
	// shutdown trigger alongside the signal.
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.Start(groupCtx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		group.Go(func() error {
			if err := metricsServer.Start(groupCtx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	<-groupCtx.Done()
	logger.Info("shutting down servers")

	shutdownErr := shutdownServers(cfg, server, metricsServer)

	// Start calls return once Shutdown closes their listeners; Wait surfaces
	// the failure that triggered the stop, if there was one.
	return errors.Join(group.Wait(), shutdownErr)
}

// shutdownServers stops both servers within the configured timeout.
func shutdownServers(
	cfg *config.Config,
	server *appHTTP.Server,
	metricsServer *appHTTP.MetricsServer,
) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
	defer cancel()

	var errs []error

	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}
