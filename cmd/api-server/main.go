package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"immersionhub/database"
	"immersionhub/internal/config"
	"immersionhub/internal/immersion"
	"immersionhub/internal/ingestion/anilist"
	"immersionhub/internal/logger"
	"immersionhub/internal/metrics"
	"immersionhub/internal/microservices/http-api/handler"
	"immersionhub/internal/microservices/http-api/middleware"
	"immersionhub/internal/microservices/http-api/repository"
	"immersionhub/internal/microservices/http-api/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_exited", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.SetupDefault(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	if err := database.RunMigrations(cfg.DatabaseURL, log); err != nil {
		return err
	}
	db, err := database.OpenGorm(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Episode duration cache: Redis when configured, in-process otherwise
	var durationCache repository.DurationCache
	if cfg.RedisURL != "" {
		redisCache, err := repository.NewRedisDurationCache(cfg.RedisURL, cfg.RedisPassword, cfg.CacheExpiry())
		if err != nil {
			log.Warn("redis_unavailable_using_memory_cache", "error", err.Error())
			durationCache = repository.NewMemoryDurationCache(cfg.CacheExpiry())
		} else {
			defer redisCache.Close()
			durationCache = redisCache
		}
	} else {
		durationCache = repository.NewMemoryDurationCache(cfg.CacheExpiry())
	}

	// Metrics
	var rec metrics.Recorder = metrics.Nop{}
	var metricsHandler http.Handler
	if cfg.PrometheusEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec = metrics.NewCollector(reg)
		metricsHandler = metrics.Handler(reg)
	}

	// Services
	engine := immersion.NewEngine(cfg.EpisodeDurationFallback)

	aniList := anilist.NewClient(
		anilist.WithAPIURL(cfg.AniListAPIURL),
		anilist.WithRateLimit(cfg.AniListRatePerSec),
		anilist.WithLogger(log),
	)

	logRepo := repository.NewLogRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	mediaService := service.NewMediaService(mediaRepo, durationCache, aniList, rec, log)
	goalService := service.NewGoalService(goalRepo, rec, log)
	logService := service.NewLogService(logRepo, mediaService, engine, rec, log)
	statsService := service.NewStatsService(logRepo, goalRepo, mediaService, engine, rec, log)

	router := handler.NewRouter(handler.RouterDeps{
		Goals:          goalService,
		Logs:           logService,
		Stats:          statsService,
		Media:          mediaService,
		Auth:           middleware.AuthMiddleware(middleware.NewTokenValidator(cfg.JWTSecret)),
		Health:         sqlDB,
		Metrics:        rec,
		MetricsHandler: metricsHandler,
		CORSOrigins:    cfg.CORSOrigins,
		Options: handler.Options{
			Location:       cfg.Location(),
			Timeout:        cfg.RequestTimeout,
			Logger:         log,
			ImportMaxRows:  cfg.ImportMaxRows,
			ImportMaxBytes: cfg.ImportMaxBytes,
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Info("api_server_starting", "addr", server.Addr, "env", cfg.GoEnv, "prometheus", cfg.PrometheusEnabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("received_shutdown_signal")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server_stopped_gracefully")
	return nil
}
