package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpctx "github.com/dtroode/notes-server/internal/api/http/context"
	"github.com/dtroode/notes-server/internal/api/http/router"
	httpserver "github.com/dtroode/notes-server/internal/api/http/server"
	"github.com/dtroode/notes-server/internal/config"
	"github.com/dtroode/notes-server/internal/logger"
	"github.com/dtroode/notes-server/internal/model"
	"github.com/dtroode/notes-server/internal/repository/postgres"
	"github.com/dtroode/notes-server/internal/server"
	"github.com/dtroode/notes-server/internal/service"
	storage "github.com/dtroode/notes-server/internal/storage/minio"
	"github.com/dtroode/notes-server/internal/telemetry"
	"github.com/dtroode/notes-server/internal/token"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	logger := logger.New(cfg.LogLevel)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, buildVersion)
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	bodyStorage := newBodyStorage(ctx, cfg, logger)

	userRepo := postgres.NewUserRepository(db)
	noteRepo := postgres.NewNoteRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	authService := service.NewAuth(userRepo, tokenManager, cfg.BcryptCost, logger)
	noteService := service.NewNote(noteRepo, userRepo, bodyStorage, cfg.Notes.BodyOffloadThreshold, logger)
	guard := service.NewGuard(tokenManager, logger)

	r := router.New(authService, noteService, guard, httpctx.NewManager(), cfg.HTTP, cfg.Cookie, logger)
	httpServer := httpserver.NewHTTPServer(r.Register(), cfg.HTTP)
	sl := server.NewSecurityLayer(cfg.HTTP)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(httpServer)

	logAppVersion(logger)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")

	return nil
}

// newBodyStorage returns nil when offloading is disabled so the note service
// keeps every body inline.
func newBodyStorage(ctx context.Context, cfg *config.Config, logger *logger.Logger) model.Storage {
	if !cfg.OffloadEnabled() {
		return nil
	}

	client, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize object storage", "error", err)
	}
	logger.Info("note body offload enabled",
		"bucket", cfg.Storage.Bucket,
		"threshold_bytes", cfg.Notes.BodyOffloadThreshold)

	return client
}

func logAppVersion(logger *logger.Logger) {
	logger.Info("build info",
		"version", buildVersion,
		"date", buildDate,
		"commit", buildCommit)
}
