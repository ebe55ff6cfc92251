package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/folio/internal/api"
	"github.com/rohits-web03/folio/internal/api/handlers"
	"github.com/rohits-web03/folio/internal/api/services"
	"github.com/rohits-web03/folio/internal/api/session"
	"github.com/rohits-web03/folio/internal/config"
	"github.com/rohits-web03/folio/internal/logger"
	"github.com/rohits-web03/folio/internal/repositories"
)

const shutdownTimeout = 10 * time.Second

// @title Folio API
// @version 1.0
// @description Owned JSON document storage with Google sign-in and API keys.
// @BasePath /
func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Environment)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	store, err := repositories.Open(ctx, cfg.Store, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	var archive repositories.ContentArchive
	if cfg.R2.Enabled() {
		archive = repositories.NewR2Archive(cfg.R2)
		log.Info("Archiving document content to R2", zap.String("bucket", cfg.R2.BucketName))
	}

	docService := services.NewDocumentService(store.Documents(), store.Users(), archive, log)
	userService := services.NewUserService(store.Users())

	secure := cfg.IsProduction()
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionMaxAge, secure)
	resolver := session.NewResolver(sessions, store.Users())

	mux := api.SetupRouter(api.Deps{
		Documents: handlers.NewDocumentHandler(docService, log),
		Users:     handlers.NewUserHandler(userService, services.NewGoogleProvider(cfg.Google), sessions, resolver, log, secure),
		Resolver:  resolver,
		Cors:      config.CorsConfig(cfg.CorsOrigins),
		Log:       log,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting Folio server", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
		}
		return store.Close(shutdownCtx)
	})

	return g.Wait()
}
