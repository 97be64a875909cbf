// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/questledger/internal/admin"
	"github.com/angelamos/questledger/internal/cache"
	"github.com/angelamos/questledger/internal/config"
	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/health"
	"github.com/angelamos/questledger/internal/middleware"
	"github.com/angelamos/questledger/internal/quest"
	"github.com/angelamos/questledger/internal/referral"
	"github.com/angelamos/questledger/internal/server"
	"github.com/angelamos/questledger/internal/subscription"
	"github.com/angelamos/questledger/internal/tokensale"
	"github.com/angelamos/questledger/internal/user"
	"github.com/angelamos/questledger/internal/webhook"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	clock := core.NewClock()
	invalidator := cache.NewRedisInvalidator(redis.Client)

	claimGuard := middleware.NewGuard(
		redis.Client,
		middleware.PerMinute(cfg.RateLimit.ClaimsPerMin, cfg.RateLimit.ClaimsBurst),
	)
	webhookGuard := middleware.NewGuard(
		redis.Client,
		middleware.PerMinute(cfg.Webhook.RatePerMinute, cfg.Webhook.RateBurst),
	)

	userSvc := user.NewService(user.NewRepository(db.DB))
	userHandler := user.NewHandler(userSvc)

	referralSvc := referral.NewService(
		referral.NewStore(db.DB),
		cfg.Referral,
		invalidator,
	)
	referralHandler := referral.NewHandler(referralSvc)

	questSvc := quest.NewService(
		quest.NewStore(db.DB),
		referralSvc,
		invalidator,
		claimGuard,
		middleware.ClaimKey,
	)
	questHandler := quest.NewHandler(questSvc)

	subscriptionSvc := subscription.NewService(subscription.NewStore(db.DB))
	subscriptionHandler := subscription.NewHandler(subscriptionSvc)

	tokensaleSvc := tokensale.NewService(tokensale.NewStore(db.DB))
	tokensaleHandler := tokensale.NewHandler(tokensaleSvc)

	webhookSvc := webhook.NewService(
		webhook.NewStore(db.DB),
		cfg.Webhook,
		cfg.Subscription,
		clock,
		invalidator,
		webhookGuard,
		middleware.WebhookKey,
	)
	webhookHandler := webhook.NewHandler(webhookSvc, cfg.Webhook)

	sweeper := subscription.NewSweeper(
		subscription.NewStore(db.DB),
		clock,
		cfg.Subscription,
		invalidator,
	)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	logger.Info("subscription sweeper started",
		"interval", cfg.Subscription.SweepInterval,
		"batch", cfg.Subscription.SweepBatch,
	)

	healthHandler := health.NewHandler(db, redis, sweeper)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	requireAPIKey := middleware.RequireAPIKey(cfg.Admin.APIKey)

	router.Route("/v1", func(r chi.Router) {
		userHandler.RegisterRoutes(r)
		questHandler.RegisterRoutes(r)
		referralHandler.RegisterRoutes(r)
		subscriptionHandler.RegisterRoutes(r)
		tokensaleHandler.RegisterRoutes(r)
		webhookHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r, requireAPIKey)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := sweeper.Stop(); err != nil {
		logger.Error("sweeper shutdown error", "error", err)
	}

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
