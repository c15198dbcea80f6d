// Package main is the entrypoint for the Donatrack API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/donatrack/donatrack/internal/auth"
	"github.com/donatrack/donatrack/internal/cache"
	"github.com/donatrack/donatrack/internal/config"
	"github.com/donatrack/donatrack/internal/handler"
	"github.com/donatrack/donatrack/internal/logging"
	"github.com/donatrack/donatrack/internal/metrics"
	"github.com/donatrack/donatrack/internal/middleware"
	"github.com/donatrack/donatrack/internal/repository"
	"github.com/donatrack/donatrack/internal/server"
	"github.com/donatrack/donatrack/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	// Initialize database
	databaseURL := cfg.PostgresURL()
	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", logging.SanitizeError(err, databaseURL)),
			slog.String("database_url", logging.RedactURL(databaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		applied, err := repo.Migrate(ctx)
		if err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations up to date", "applied", applied)
	}

	seeded, err := repo.Seed(ctx, cfg.AdminPassword, auth.HashPassword)
	if err != nil {
		logger.Error("failed to seed database", "error", err)
		os.Exit(1)
	}
	if seeded.AdminCreated || seeded.ProjectsCreated > 0 {
		logger.Info("seeded database",
			"admin_created", seeded.AdminCreated,
			"projects_created", seeded.ProjectsCreated,
		)
	}
	if seeded.AdminCreated && cfg.AdminPassword == defaultAdminPassword && !cfg.IsDevelopment() {
		logger.Warn("admin user created with the default password; change ADMIN_PASSWORD")
	}

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.Options{
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
		DialTimeout:  cfg.RedisDialTimeout,
		OpTimeout:    cfg.RedisOpTimeout,
	})
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", logging.SanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", logging.RedactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	if seeded.ProjectsCreated > 0 {
		if err := cacheClient.InvalidateProjects(ctx); err != nil {
			logger.Warn("failed to invalidate project cache", "error", err)
		}
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(repo, cacheClient, tokens, recorder, logger)
	donationService := service.NewDonationService(repo, loc, recorder, logger)
	projectService := service.NewProjectService(repo, cacheClient, logger)

	// Setup router
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	if len(corsCfg.AllowedOrigins) == 0 && cfg.IsDevelopment() {
		corsCfg.AllowedOrigins = middleware.DevelopmentOrigins
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger:    logger,
		Recorder:  recorder,
		Gatherer:  registry,
		Auth:      handler.NewAuthHandler(authService, logger),
		Donations: handler.NewDonationHandler(donationService, logger),
		Projects:  handler.NewProjectHandler(projectService, logger),
		Health:    handler.NewHealthHandler(repo, cacheClient),
		Verifier:  authService,
		RateLimit: middleware.RateLimitConfig{
			Logger:        logger,
			Limiter:       cacheClient,
			Recorder:      recorder,
			Enabled:       cfg.LoginRateLimitEnabled,
			RatePerMinute: cfg.LoginRatePerMinute,
			Burst:         cfg.LoginRateBurst,
		},
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		CORS:              corsCfg,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		FrontendDir:       cfg.FrontendDir,
	})

	// Create and run server
	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"timezone", loc.String(),
		"frontend_dir", cfg.FrontendDir,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// defaultAdminPassword mirrors the ADMIN_PASSWORD default.
const defaultAdminPassword = "admin123"
