package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myhometown/missionary-import/internal/api"
	"github.com/myhometown/missionary-import/internal/config"
	"github.com/myhometown/missionary-import/internal/db"
	"github.com/myhometown/missionary-import/internal/repository"
)

const idempotencySweepInterval = time.Hour

func main() {
	// Initialize structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting missionary-import service")

	cfg := config.Load()
	if cfg.Server.DevTokens {
		slog.Warn("dev token endpoint enabled; set ENABLE_DEV_TOKENS=false in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool := connectWithRetry(ctx, cfg, 30)
	defer dbPool.Close()

	if err := db.RunMigrations(ctx, dbPool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	go sweepIdempotencyKeys(ctx, repository.NewIdempotencyRepository(dbPool))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      api.NewRouter(dbPool, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("server listening",
			"port", cfg.Server.Port,
			"service", "missionary-import",
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	<-ctx.Done()

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server exited")
}

// sweepIdempotencyKeys deletes expired idempotency keys until ctx ends.
func sweepIdempotencyKeys(ctx context.Context, repo *repository.IdempotencyRepository) {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.CleanExpired(ctx)
			if err != nil {
				slog.Warn("failed to clean expired idempotency keys", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired idempotency keys removed", "count", n)
			}
		}
	}
}

func connectWithRetry(ctx context.Context, cfg *config.Config, maxRetries int) *db.Pool {
	for i := 0; i < maxRetries; i++ {
		pool, err := db.Connect(ctx, cfg.Database)
		if err == nil {
			return pool
		}
		slog.Warn("database not ready, retrying...",
			"attempt", i+1,
			"max_retries", maxRetries,
			"error", err,
		)
		select {
		case <-ctx.Done():
			slog.Error("interrupted while waiting for database")
			os.Exit(1)
		case <-time.After(2 * time.Second):
		}
	}
	slog.Error("failed to connect to database after retries")
	os.Exit(1)
	return nil
}
