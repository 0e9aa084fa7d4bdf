// cmd/gymnexus/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"gymnexus/internal/config"
	"gymnexus/internal/membership"
	"gymnexus/internal/snapshot"
	"gymnexus/internal/telemetry"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, "gymnexus", cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to set up telemetry", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := openSnapshotStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open snapshot store", "backend", cfg.SnapshotBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.CreateRatePerMinute)), cfg.CreateBurst)
	svc := membership.NewService(membership.NewRegistry(), store, logger, limiter)
	handler := membership.NewHandler(svc, logger)

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           membership.NewRouter(handler, cfg.Origins()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr, "snapshot_backend", cfg.SnapshotBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}

func openSnapshotStore(ctx context.Context, cfg *config.Config) (membership.SnapshotStore, func(), error) {
	if cfg.SnapshotBackend != config.BackendPostgres {
		store, err := snapshot.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	store := snapshot.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}
