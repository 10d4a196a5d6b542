package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/cache"
	"github.com/transitpulse/transit-assistant-backend/internal/config"
	"github.com/transitpulse/transit-assistant-backend/internal/database"
	"github.com/transitpulse/transit-assistant-backend/internal/handlers"
	"github.com/transitpulse/transit-assistant-backend/internal/logger"
	"github.com/transitpulse/transit-assistant-backend/internal/memstore"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
	"github.com/transitpulse/transit-assistant-backend/internal/services"
	"github.com/transitpulse/transit-assistant-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"version":     version,
		"build_time":  buildTime,
		"environment": cfg.Server.Environment,
	}).Info("Starting Transit Assistant backend")

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), startupTimeout)
	stores, storage, err := openStores(startupCtx, cfg, log)
	if err != nil {
		cancelStartup()
		log.Fatalf("Failed to initialise storage: %v", err)
	}
	if stores.Close != nil {
		defer stores.Close()
	}

	analyticsCache, err := openCache(startupCtx, cfg, log)
	cancelStartup()
	if err != nil {
		log.Fatalf("Failed to initialise cache: %v", err)
	}
	defer analyticsCache.Close()

	// Initialize services
	log.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	authService := services.NewAuthService(stores.Users, jwtService, cfg.Security.BcryptCost, cfg.Security.AdminEmails, log)
	routeService := services.NewRouteService(stores.Routes, log)
	delayService := services.NewDelayService(stores.Delays, stores.Routes, stores.Users, log)
	analyticsService := services.NewAnalyticsService(stores, analyticsCache, cfg.Analytics.CacheTTL, cfg.Analytics.DefaultDays, log)
	favoriteService := services.NewFavoriteService(stores.Favorites, stores.Routes, log)
	tripService := services.NewTripService(stores.Trips, stores.Routes, log)

	rateLimiter := services.NewRateLimitService(services.RateLimitConfig{
		services.RateScopeDelayReport: {Max: cfg.RateLimit.ReportMax, Window: cfg.RateLimit.ReportWindow},
		services.RateScopeAuth:        {Max: cfg.RateLimit.AuthMax, Window: cfg.RateLimit.AuthWindow},
	})

	cronService := services.NewCronService(analyticsService, cfg.Analytics.RefreshCron, log)
	if err := cronService.Start(); err != nil {
		log.Fatalf("Failed to start cron service: %v", err)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:      cfg,
		Logger:      log,
		JWTService:  jwtService,
		RateLimiter: rateLimiter,
		Auth:        handlers.NewAuthHandler(authService, log),
		Routes:      handlers.NewRouteHandler(routeService, log),
		Delays:      handlers.NewDelayHandler(delayService, log),
		Analytics:   handlers.NewAnalyticsHandler(analyticsService, log),
		Favorites:   handlers.NewFavoriteHandler(favoriteService, log),
		Trips:       handlers.NewTripHandler(tripService, log),
		Health:      handlers.NewHealthHandler(version, storage, stores.Ping, cronService.GetJobStatus),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("storage", storage).Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited successfully")
}

// openStores connects the configured storage driver. With
// STORAGE_FALLBACK_TO_MEMORY set, an unreachable Postgres degrades to the
// in-memory store instead of aborting startup.
func openStores(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*repository.Stores, string, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		return memstore.New().Stores(), config.StorageMemory, nil
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.Database)
	if err != nil {
		if !cfg.Storage.FallbackToMemory {
			return nil, "", err
		}
		log.WithError(err).Warn("Database unavailable, falling back to in-memory storage")
		return memstore.New().Stores(), config.StorageMemory, nil
	}
	log.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, "", fmt.Errorf("failed to apply schema: %w", err)
		}
		log.Info("Database schema is up to date")
	}

	return database.NewStores(db), config.StoragePostgres, nil
}

func openCache(ctx context.Context, cfg *config.Config, log *logrus.Logger) (cache.Cache, error) {
	if cfg.Cache.Driver == config.CacheRedis {
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, "transit")
		if err != nil {
			return nil, err
		}
		log.Info("Analytics cache: redis")
		return c, nil
	}

	log.Info("Analytics cache: memory")
	return cache.NewMemoryCache(cfg.Analytics.CacheTTL, 2*cfg.Analytics.CacheTTL), nil
}
