package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"immersionhub/database"
	"immersionhub/internal/config"
	"immersionhub/internal/ingestion/anilist"
	"immersionhub/internal/logger"
	"immersionhub/internal/metrics"
	"immersionhub/internal/microservices/http-api/repository"
	"immersionhub/internal/microservices/http-api/service"
)

// anilist_sync refreshes stored anime and manga metadata from AniList. It
// shares the API server's environment. With ANILIST_SYNC_INTERVAL unset it
// runs one pass and exits.
func main() {
	if err := run(); err != nil {
		slog.Error("anilist_sync_failed", "error", err.Error())
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
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("component", "anilist_sync")

	db, err := database.OpenGorm(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	// Only a shared cache can be invalidated from here; the API server's
	// in-process cache expires on its own.
	var durationCache repository.DurationCache
	if cfg.RedisURL != "" {
		redisCache, err := repository.NewRedisDurationCache(cfg.RedisURL, cfg.RedisPassword, cfg.CacheExpiry())
		if err != nil {
			log.Warn("redis_unavailable", "error", err.Error())
		} else {
			defer redisCache.Close()
			durationCache = redisCache
		}
	}

	aniList := anilist.NewClient(
		anilist.WithAPIURL(cfg.AniListAPIURL),
		anilist.WithRateLimit(cfg.AniListRatePerSec),
		anilist.WithLogger(log),
	)
	refresher := service.NewMediaRefresher(repository.NewMediaRepository(db), durationCache, aniList, metrics.Nop{}, log)
	opts := service.RefreshOptions{
		StaleAfter: cfg.AniListSyncStaleAfter,
		Limit:      cfg.AniListSyncBatch,
		Workers:    cfg.AniListSyncWorkers,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AniListSyncInterval <= 0 {
		_, err := refresher.Run(ctx, opts)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	log.Info("anilist_sync_polling", "interval", cfg.AniListSyncInterval.String())
	ticker := time.NewTicker(cfg.AniListSyncInterval)
	defer ticker.Stop()
	for {
		if _, err := refresher.Run(ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("media_refresh_failed", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			log.Info("anilist_sync_stopped")
			return nil
		case <-ticker.C:
		}
	}
}
