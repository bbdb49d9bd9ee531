package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mgacha-dashboard/internal/cache"
	"mgacha-dashboard/internal/config"
	"mgacha-dashboard/internal/handler"
	"mgacha-dashboard/internal/logger"
	"mgacha-dashboard/internal/middleware"
	"mgacha-dashboard/internal/repository"
	"mgacha-dashboard/internal/router"
	"mgacha-dashboard/internal/service"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	logger.Init(cfg.App.Debug)
	defer logger.Sync()
	log := logger.Log

	log.Infof("Starting %s %s...", cfg.App.Name, cfg.App.Version)
	log.Infof("Environment: %s", cfg.App.Environment)

	// Initialize the record store based on config
	store, err := repository.New(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.Store.Type, err)
	}
	defer store.Close()
	log.Infof("%s store initialized", cfg.Store.Type)

	// Shared cache: Redis when configured and reachable, memory otherwise
	cacheType := cfg.Cache.Type
	var sharedCache cache.Cache
	if cacheType == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.RedisPrefix,
		})
		if err != nil {
			log.Warnf("Warning: Redis connection failed, using memory cache: %v", err)
			cacheType = "memory"
		} else {
			sharedCache = redisCache
			log.Info("Redis cache initialized")
		}
	}
	if sharedCache == nil {
		sharedCache = cache.NewMemoryCache(time.Minute)
	}
	defer sharedCache.Close()

	// Initialize services
	dashboardService := service.NewDashboardService(store, cfg.Dashboard.HistoryOffset)
	leaderboardService := service.NewLeaderboardService(store, sharedCache, cfg.Cache.TTL, cfg.Dashboard.LeaderboardSize)
	sessions := service.NewSessionManager(dashboardService)

	sweeper, err := service.NewSessionSweeper(sessions, service.SweepConfig{
		IdleTTL:  cfg.Session.IdleTTL,
		Interval: cfg.Session.SweepInterval,
	})
	if err != nil {
		log.Fatalf("Failed to create session sweeper: %v", err)
	}
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start session sweeper: %v", err)
	}

	// Initialize handlers
	healthHandler := handler.New(store, cfg.App.Version)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, leaderboardService)
	adminHandler := handler.NewAdminHandler(store, sessions, cfg.Store.Type, cacheType)

	// Create router
	r := router.New(router.Config{
		Handler:           healthHandler,
		DashboardHandler:  dashboardHandler,
		AdminHandler:      adminHandler,
		SessionMiddleware: middleware.NewSessionMiddleware(sessions),
		StaticDir:         cfg.Server.StaticDir,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := sweeper.Stop(); err != nil {
		log.Warnf("Session sweeper shutdown error: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}

	log.Info("Server stopped")
	fmt.Println("Goodbye!")
}
