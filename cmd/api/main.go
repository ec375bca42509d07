package main

import (
	"context"
	"log"
	"time"

	"editor-web/config"
	"editor-web/internal/handler"
	"editor-web/internal/metrics"
	"editor-web/internal/middleware"
	editorredis "editor-web/internal/redis"
	"editor-web/internal/repository"
	"editor-web/internal/server"
	"editor-web/internal/services"
	"editor-web/internal/session"
	"editor-web/internal/web"
	"editor-web/pkg/database"
	"editor-web/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	l := logger.New(logger.ModeFor(cfg.AppMode))
	defer l.Sync()
	logger.SetGlobalLogger(l)

	ctx := context.Background()

	var userRepo repository.UserRepository
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		l.Infof("Using in-memory user store; accounts are lost on restart")
		userRepo = repository.NewMemoryUserRepository()
	default:
		db, err := database.Connect(ctx, cfg)
		if err != nil {
			l.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.MigrateUp(ctx, db); err != nil {
			l.Fatalf("Failed to apply migrations: %v", err)
		}
		userRepo = repository.NewUserRepository(db)
	}

	var (
		limiter  middleware.AuthLimiter
		registry session.Registry = session.NewMemoryRegistry()
	)
	if cfg.NeedsRedis() {
		client, err := editorredis.Connect(ctx, editorredis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			l.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()

		if cfg.SessionStore == config.SessionStoreRedis {
			registry = editorredis.NewSessionRegistry(client)
		}
		if cfg.RateLimitEnabled {
			limiter = editorredis.NewRateLimiter(client, editorredis.RateLimitConfig{
				AuthLimit:  cfg.AuthRateLimit,
				AuthWindow: time.Duration(cfg.AuthRateWindowSec) * time.Second,
			})
		}
	}
	if cfg.SessionStore == config.SessionStoreMemory {
		l.Infof("Using in-memory session registry; sessions are lost on restart")
	}

	authService, err := services.NewAuthService(userRepo, cfg.BcryptCost, l)
	if err != nil {
		l.Fatalf("Failed to create auth service: %v", err)
	}

	tmpl, err := web.Templates()
	if err != nil {
		l.Fatalf("Failed to parse templates: %v", err)
	}

	maxAge := time.Duration(cfg.SessionMaxAgeHours) * time.Hour
	sessionManager := session.NewCookieManager(registry, maxAge, cfg.IsRelease())
	authMetrics := metrics.NewAuthMetrics()

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:   handler.NewAuthHandler(authService, sessionManager, authMetrics, l),
		Health: handler.NewHealthHandler(userRepo, l),
	}, server.Dependencies{
		SessionStore: session.NewStore(session.StoreOptions{
			Secret: cfg.SessionSecret,
			MaxAge: maxAge,
			Secure: cfg.IsRelease(),
		}),
		Sessions:  sessionManager,
		Templates: tmpl,
		Metrics:   authMetrics,
		Limiter:   limiter,
	})

	if err := srv.Start(); err != nil {
		l.Errorf("Server exited with error: %v", err)
	}
}
