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
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/scoutlab/xi-optimizer/internal/api"
	"github.com/scoutlab/xi-optimizer/internal/api/handlers"
	"github.com/scoutlab/xi-optimizer/internal/api/middleware"
	"github.com/scoutlab/xi-optimizer/internal/models"
	"github.com/scoutlab/xi-optimizer/internal/providers"
	"github.com/scoutlab/xi-optimizer/internal/scout"
	"github.com/scoutlab/xi-optimizer/internal/services"
	"github.com/scoutlab/xi-optimizer/pkg/config"
	"github.com/scoutlab/xi-optimizer/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.DB.AutoMigrate(&models.Squad{}, &models.Shortlist{}, &models.ShortlistEntry{}); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	// Cache: Redis when configured, in-process otherwise
	var cache scout.CacheProvider
	var cleaner services.CacheCleaner
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cache = services.NewCacheService(redisClient)
	} else {
		memCache := services.NewMemoryCache()
		cache = memCache
		cleaner = memCache
		logrus.Info("No Redis URL configured, using in-memory cache")
	}

	// Data providers
	fbref := providers.NewFBrefClient(cfg.FBrefBaseURL, cache, cfg.ExternalAPITimeout,
		cfg.ScrapeRateLimit, cfg.ScrapeBurst, cfg.CircuitBreakerThreshold, logger)
	transfermarkt := providers.NewTransfermarktClient(cache, cfg.ExternalAPITimeout,
		cfg.ScrapeRateLimit, cfg.ScrapeBurst, cfg.CircuitBreakerThreshold, logger)

	// Services
	poolService := services.NewPoolService(fbref, transfermarkt, cache,
		cfg.DefaultSeason, cfg.DefaultLeague, cfg.PoolCacheTTL, cfg.MaxValueLookups, logger)
	squadService := services.NewSquadService(db.DB, poolService, cfg.DataDir, logger)
	shortlistService := services.NewShortlistService(db.DB, logger)

	// Scheduled pool refresh
	refreshInterval, err := time.ParseDuration(cfg.PoolRefreshInterval)
	if err != nil {
		logrus.Warnf("Invalid refresh interval, using default 6h: %v", err)
		refreshInterval = 6 * time.Hour
	}
	refresher := services.NewRefreshService(poolService, cleaner, refreshInterval, logger)
	if err := refresher.Start(); err != nil {
		logrus.Errorf("Failed to start refresh service: %v", err)
	}
	defer refresher.Stop()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(poolService)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	// API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, poolService, squadService, shortlistService, cfg.OptimizerTimeout, logger)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
