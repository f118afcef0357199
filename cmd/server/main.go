package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/eztechnick/exam-portal/internal/cache"
	"github.com/eztechnick/exam-portal/internal/config"
	"github.com/eztechnick/exam-portal/internal/gasclient"
	"github.com/eztechnick/exam-portal/internal/handlers"
	"github.com/eztechnick/exam-portal/internal/services"
	"github.com/eztechnick/exam-portal/internal/session"
	"github.com/eztechnick/exam-portal/internal/utils"
	"github.com/eztechnick/exam-portal/internal/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	cacheService := buildCache(cfg, logger)

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	store := gasclient.New(func() string { return cfg.ScriptURL }, logger)
	v := validator.New()

	examService := services.NewExamService(
		store, cacheService, cfg.Cache.TTL, publisher, v, logger,
		session.WithConfirmWindow(cfg.ConfirmWindow),
	)
	adminService := services.NewAdminService(
		store, cacheService, v, logger,
		cfg.AdminJWTSecret, cfg.AdminTokenTTL,
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	hm := handlers.NewHandlerManager(examService, adminService, cfg.AdminJWTSecret)
	hm.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// buildCache falls back to a no-op cache when Redis is disabled or
// unreachable; every cached read has a store fallback anyway.
func buildCache(cfg *config.Config, logger *slog.Logger) cache.CacheService {
	if !cfg.Cache.Enabled {
		return cache.NewNoopCache()
	}

	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		logger.Warn("invalid redis url, caching disabled", "error", err)
		return cache.NewNoopCache()
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, caching disabled", "error", err)
		return cache.NewNoopCache()
	}

	logger.Info("redis cache enabled")
	return cache.NewRedisCache(client, logger)
}
