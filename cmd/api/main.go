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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carterperez-dev/coursehub/internal/admin"
	"github.com/carterperez-dev/coursehub/internal/auth"
	"github.com/carterperez-dev/coursehub/internal/config"
	"github.com/carterperez-dev/coursehub/internal/core"
	"github.com/carterperez-dev/coursehub/internal/course"
	"github.com/carterperez-dev/coursehub/internal/events"
	"github.com/carterperez-dev/coursehub/internal/health"
	"github.com/carterperez-dev/coursehub/internal/middleware"
	"github.com/carterperez-dev/coursehub/internal/purchase"
	"github.com/carterperez-dev/coursehub/internal/server"
	"github.com/carterperez-dev/coursehub/internal/user"
	"github.com/carterperez-dev/coursehub/migrations"
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

	if cfg.JWT.GenerateMissing {
		generated, genErr := auth.EnsureKeyPair(
			cfg.JWT.PrivateKeyPath,
			cfg.JWT.PublicKeyPath,
		)
		if genErr != nil {
			return genErr
		}
		if generated {
			logger.Warn("generated new JWT signing keys",
				"private_key_path", cfg.JWT.PrivateKeyPath,
			)
		}
	}

	if cfg.Database.AutoMigrate {
		version, migErr := core.Migrate(cfg.Database.URL, migrations.FS)
		if migErr != nil {
			return migErr
		}
		logger.Info("database migrated", "version", version)
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

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	healthDeps := []health.Dependency{
		{Name: "database", Checker: db, Critical: true},
		{Name: "redis", Checker: redis},
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		amqpPub, pubErr := events.NewAMQPPublisher(cfg.Events, cfg.App.Name)
		if pubErr != nil {
			logger.Warn("event publisher unavailable, events disabled",
				"error", pubErr,
			)
		} else {
			publisher = amqpPub
			healthDeps = append(healthDeps, health.Dependency{
				Name:    "amqp",
				Checker: amqpPub,
			})
			logger.Info("event publisher connected",
				"exchange", cfg.Events.Exchange,
			)
		}
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	created, err := userSvc.EnsureAdmin(ctx, cfg.Admin)
	if err != nil {
		return err
	}
	if created {
		logger.Info("admin account created", "email", cfg.Admin.Email)
	}

	authSvc := auth.NewService(jwtManager, userSvc, logger)
	authHandler := auth.NewHandler(authSvc)

	courseRepo := course.NewRepository(db.DB)

	purchaseRepo := purchase.NewRepository(db.DB)
	purchaseSvc := purchase.NewService(purchaseRepo, courseRepo, publisher, logger)
	purchaseHandler := purchase.NewHandler(purchaseSvc)

	var catalogCache course.Cache
	if cfg.Catalog.CacheEnabled {
		catalogCache = course.NewRedisCache(redis.Client, cfg.Catalog.CacheTTL)
	}

	courseSvc := course.NewService(course.ServiceConfig{
		Repo:            courseRepo,
		Owners:          purchaseSvc,
		Cache:           catalogCache,
		Events:          publisher,
		DefaultCurrency: cfg.Catalog.DefaultCurrency,
		Logger:          logger,
	})
	courseHandler := course.NewHandler(courseSvc)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Courses:    courseSvc,
		Users:      userSvc,
		Purchases:  purchaseSvc,
	})

	healthHandler := health.NewHandler(healthDeps...)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	proxies, err := middleware.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return err
	}

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics)
	}
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			KeyFunc:  proxies.KeyByIP,
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authLimiter := middleware.NewAuthRateLimiter(
		redis.Client,
		middleware.PerWindow(
			cfg.RateLimit.AuthRequests,
			cfg.RateLimit.AuthBurst,
			cfg.RateLimit.Window,
		),
		proxies,
	)

	userLimiter := middleware.NewUserRateLimiter(
		redis.Client,
		middleware.PerMinute(
			cfg.RateLimit.UserRequests,
			cfg.RateLimit.UserBurst,
		),
	)

	server.RegisterAPIRoutes(router, server.APIHandlers{
		Auth:        authHandler,
		Users:       userHandler,
		Courses:     courseHandler,
		Purchases:   purchaseHandler,
		Admin:       adminHandler,
		Verifier:    jwtManager,
		AuthLimiter: authLimiter.Handler,
		UserLimiter: userLimiter.Handler,
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

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := publisher.Close(); err != nil {
		logger.Error("event publisher close error", "error", err)
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
