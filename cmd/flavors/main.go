package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/flavors/internal/config"
	"github.com/deppfellow/flavors/internal/database"
	"github.com/deppfellow/flavors/internal/handler"
	"github.com/deppfellow/flavors/internal/logger"
	"github.com/deppfellow/flavors/internal/repository"
	"github.com/deppfellow/flavors/internal/router"
	"github.com/deppfellow/flavors/internal/server"
	"github.com/deppfellow/flavors/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	// initTimeout bounds the schema initializer.
	initTimeout = 30 * time.Second

	// shutdownTimeout is how long in-flight requests get to finish.
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Flushed by srv.Shutdown.
	loggerService := logger.NewLoggerService(cfg.Observability)

	appLogger := logger.NewLoggerWithService(cfg.Observability, loggerService)

	// The table is dropped, recreated and seeded before anything listens.
	initCtx, cancel := context.WithTimeout(context.Background(), initTimeout)
	err = database.Initialize(initCtx, &appLogger, cfg)
	cancel()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize database schema")
	}

	srv, err := server.New(cfg, &appLogger, loggerService)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		appLogger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited")
}
