package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/KartikLabhshetwar/FolioSign/internal/cleanup"
	"github.com/KartikLabhshetwar/FolioSign/internal/config"
	"github.com/KartikLabhshetwar/FolioSign/internal/database"
	"github.com/KartikLabhshetwar/FolioSign/internal/documents"
	"github.com/KartikLabhshetwar/FolioSign/internal/lifecycle"
	internalroutes "github.com/KartikLabhshetwar/FolioSign/internal/routes"
	"github.com/KartikLabhshetwar/FolioSign/internal/signing"
	"github.com/KartikLabhshetwar/FolioSign/internal/storage"
	"github.com/KartikLabhshetwar/FolioSign/pkg/middleware"
	"github.com/KartikLabhshetwar/FolioSign/pkg/routes"
)

func run(cfg *config.Config, logger *slog.Logger) error {
	coordinator := lifecycle.New(context.Background(), logger)

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return err
	}
	coordinator.OnShutdown("database", func(ctx context.Context) error {
		return db.Close()
	})

	coordinator.OnStartup(func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}
		return db.Migrate()
	})

	blobs, blobHandler, err := buildStorage(coordinator.Context(), cfg, logger)
	if err != nil {
		return err
	}

	capturer, err := signing.NewCapturer(cfg.Signing)
	if err != nil {
		return err
	}

	engine := signing.NewEngine()
	signer := signing.NewService(blobs, engine, capturer, logger)

	docs := documents.New(documents.Options{
		DB:            db.DB(),
		Blobs:         blobs,
		Signer:        signer,
		Engine:        engine,
		Pagination:    cfg.Pagination,
		PresignExpiry: cfg.Storage.PresignExpiryDuration(),
		MaxUploadSize: cfg.Storage.MaxUploadBytes(),
		Logger:        logger,
	})

	queue := cleanup.NewQueue(docs, logger)
	if cfg.Cleanup.Enabled {
		scheduler, err := cleanup.NewScheduler(queue, cfg.Cleanup.Schedule, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		coordinator.OnShutdown("cleanup scheduler", scheduler.Stop)
	}
	// Drain whatever the scheduler has not reached yet.
	coordinator.OnShutdown("cleanup queue", func(ctx context.Context) error {
		_, err := queue.Flush(ctx)
		return err
	})

	registry := routes.New()
	registry.Register(
		internalroutes.HealthRoutes(coordinator),
		documents.NewHandler(docs, cfg.Pagination, cfg.Storage.MaxUploadBytes(), logger).Routes(),
	)
	if blobHandler != nil {
		registry.Register(blobHandler.Routes())
	}

	handler := middleware.Chain(
		registry.Build(),
		middleware.Logger(logger),
		middleware.CORS(cfg.Server.CORS),
		middleware.TrimSlash,
		middleware.Identity,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	coordinator.OnShutdown("http server", server.Shutdown)

	if err := coordinator.Start(); err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		coordinator.Shutdown(cfg.Server.ShutdownTimeoutDuration())
		return err
	case sig := <-stop:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	return coordinator.Shutdown(cfg.Server.ShutdownTimeoutDuration())
}

// buildStorage selects the configured blob backend. The filesystem backend
// additionally returns the handler that serves its presigned URLs.
func buildStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.System, *internalroutes.BlobHandler, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendS3:
		s3, err := storage.NewS3(ctx, cfg.Storage.S3, logger)
		if err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	default:
		fs, err := storage.NewFilesystem(
			cfg.Storage.BasePath,
			cfg.Storage.PublicBaseURL,
			cfg.Storage.URLSecret,
			logger,
		)
		if err != nil {
			return nil, nil, err
		}
		return fs, internalroutes.NewBlobHandler(fs, cfg.Storage.MaxUploadBytes(), logger), nil
	}
}
