package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/database"
	"github.com/stemsi/learnhub-backend/internal/handler"
	"github.com/stemsi/learnhub-backend/internal/learnerdata"
	"github.com/stemsi/learnhub-backend/internal/logger"
	"github.com/stemsi/learnhub-backend/internal/middleware"
	"github.com/stemsi/learnhub-backend/internal/repository"
	"github.com/stemsi/learnhub-backend/internal/router"
	"github.com/stemsi/learnhub-backend/internal/service"
	"github.com/stemsi/learnhub-backend/internal/validator"
	"github.com/stemsi/learnhub-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("data_source", cfg.DataSource).
		Msg("Starting LearnHub Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Learner Data Source ───────────────────────────────────────────
	src, err := buildSource(cfg, pool, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize learner data source")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	adminService := service.NewAdminService(adminRepo)
	recommendationService := service.NewRecommendationService(src, log)
	dashboardService := service.NewDashboardService(src, recommendationService, log,
		service.WithStreakLocation(cfg.StreakLocation),
		service.WithRecommendationLimit(cfg.RecommendationLimit),
	)
	activityService := service.NewActivityService(rdb)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, adminService),
		Dashboard: handler.NewDashboardHandler(dashboardService, src),
		Activity:  handler.NewActivityHandler(activityService),
		WS:        handler.NewWSHandler(dashboardService, handler.NewRedisActivityNotifier(rdb), log, cfg.AllowedOrigins),
	}

	limiters := &router.Limiters{
		Auth:     middleware.NewRateLimiter(rdb, "auth", cfg.RateLimitPerMinute, time.Minute, log),
		Activity: middleware.NewRateLimiter(rdb, "activity", cfg.RateLimitPerMinute, time.Minute, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	activityWorker := worker.NewActivityWorker(pool, rdb, cfg.StreakLocation, log)
	go func() {
		defer close(workerDone)
		activityWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, limiters, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the activity worker and wait for its final flush.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Activity worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// buildSource picks the learner data backend and wraps it with the catalog cache.
func buildSource(cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) (learnerdata.Source, error) {
	var src learnerdata.Source

	switch cfg.DataSource {
	case config.DataSourceLMS:
		client, err := learnerdata.NewLMSClient(learnerdata.LMSConfig{
			BaseURL:      cfg.LMSBaseURL,
			APIKey:       cfg.LMSAPIKey,
			Timeout:      cfg.LMSTimeout,
			MaxRetries:   cfg.LMSMaxRetries,
			RetryBackoff: cfg.LMSRetryBackoff,
		}, log)
		if err != nil {
			return nil, err
		}
		src = client
	default:
		if cfg.DataSource != config.DataSourcePostgres {
			log.Warn().Str("data_source", cfg.DataSource).Msg("Unknown DATA_SOURCE, falling back to postgres")
		}
		src = learnerdata.NewPostgresSource(pool)
	}

	if cfg.CatalogCacheTTL > 0 {
		src = learnerdata.NewCachedSource(src, learnerdata.NewRedisCache(rdb), cfg.CatalogCacheTTL, log)
	}
	return src, nil
}

