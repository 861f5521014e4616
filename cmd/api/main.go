package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/examiner/internal/api"
	"github.com/nikhilbhutani/examiner/internal/audit"
	"github.com/nikhilbhutani/examiner/internal/config"
	"github.com/nikhilbhutani/examiner/internal/database"
	"github.com/nikhilbhutani/examiner/internal/examiner"
	"github.com/nikhilbhutani/examiner/internal/llm"
	"github.com/nikhilbhutani/examiner/internal/multimodal/stt"
	"github.com/nikhilbhutani/examiner/internal/queue"
	"github.com/nikhilbhutani/examiner/internal/stats"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Missing keys are reported but do not stop the server; /readyz stays red.
	missing := cfg.MissingCredentials()
	for _, name := range missing {
		slog.Error("missing credential", "name", name)
	}

	transcriber, err := stt.NewProvider(cfg.STT)
	if err != nil {
		slog.Error("transcriber unavailable", "backend", cfg.STT.Backend, "error", err)
		transcriber = nil
	}

	gateway := llm.NewGateway(ctx, cfg.LLM)
	if !gateway.Configured() {
		slog.Error("generative provider unavailable", "provider", cfg.LLM.DefaultProvider)
	}

	prompts := examiner.DefaultPrompts()
	if cfg.Examiner.PromptsFile != "" {
		prompts, err = examiner.LoadPrompts(cfg.Examiner.PromptsFile)
		if err != nil {
			slog.Error("failed to load prompts", "path", cfg.Examiner.PromptsFile, "error", err)
			os.Exit(1)
		}
	}

	deps := api.Deps{
		Gateway:            gateway,
		MissingCredentials: missing,
		Checks:             api.ProviderChecks(transcriber, gateway),
		StaticDir:          cfg.Server.StaticDir,
	}
	var observers []examiner.Observer

	// Database connection (optional)
	if cfg.Database.URL != "" {
		db, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, running without usage store", "error", err)
		} else {
			defer db.Close()

			if err := database.RunMigrations(ctx, db, database.MigrationsFS(cfg.Database.MigrationsPath)); err != nil {
				slog.Warn("migrations failed", "error", err)
			}
			auditSvc := audit.NewService(db)
			deps.Usage = auditSvc
			deps.Checks["database"] = auditSvc
		}
	}

	// Redis connection (optional)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, running without stats", "error", err)
		} else {
			turnStats := stats.NewRedisStats(rdb, stats.DefaultKey)
			deps.Stats = turnStats
			deps.Checks["redis"] = turnStats
			observers = append(observers, turnStats)

			queueClient := queue.NewClient(cfg.Redis)
			defer queueClient.Close()
			observers = append(observers, queueClient)
		}
	}

	deps.Processor = examiner.NewProcessor(transcriber, gateway,
		examiner.WithPrompts(prompts),
		examiner.WithMinAudioBytes(cfg.Examiner.MinAudioBytes),
		examiner.WithLanguage(cfg.Examiner.Language),
		examiner.WithObservers(observers...),
	)

	// Setup router
	router := api.NewRouter(deps)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"stt_backend", cfg.STT.Backend,
			"llm_provider", gateway.DefaultProvider(),
			"llm_model", gateway.DefaultModel(),
			"prompts_version", prompts.Version,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
