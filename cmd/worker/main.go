package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/examiner/internal/audit"
	"github.com/nikhilbhutani/examiner/internal/config"
	"github.com/nikhilbhutani/examiner/internal/database"
	"github.com/nikhilbhutani/examiner/internal/queue"
	"github.com/nikhilbhutani/examiner/internal/queue/workers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Database.URL == "" {
		slog.Error("DATABASE_URL is required by the usage worker")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, database.MigrationsFS(cfg.Database.MigrationsPath)); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				queue.QueueUsage: 1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	// Register workers
	usageWorker := workers.NewUsageWorker(audit.NewService(db))

	registry.Register(queue.TypeUsageRecord, asynq.HandlerFunc(usageWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
