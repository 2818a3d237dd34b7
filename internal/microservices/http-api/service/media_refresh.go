package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"immersionhub/internal/immersion"
	"immersionhub/internal/ingestion/anilist"
	"immersionhub/internal/metrics"
	"immersionhub/internal/microservices/http-api/repository"
)

// RefreshOptions bounds one metadata refresh run.
type RefreshOptions struct {
	StaleAfter time.Duration
	Limit      int
	Workers    int
}

type RefreshResult struct {
	Checked int
	Updated int
	Failed  int
}

// MediaRefresher re-reads catalog metadata from AniList for media that has
// not been updated recently. Episode durations change the time credited to
// anime logs, so refreshed rows are evicted from the duration cache.
type MediaRefresher struct {
	media *mediaService
	now   func() time.Time
}

func NewMediaRefresher(repo repository.MediaRepository, cache repository.DurationCache, lookup MediaLookup, rec metrics.Recorder, logger *slog.Logger) *MediaRefresher {
	svc := NewMediaService(repo, cache, lookup, rec, logger).(*mediaService)
	return &MediaRefresher{media: svc, now: time.Now}
}

func (r *MediaRefresher) Run(ctx context.Context, opts RefreshOptions) (*RefreshResult, error) {
	s := r.media
	if s.lookup == nil {
		return nil, errors.New("media refresh needs an AniList client")
	}

	cutoff := r.now().Add(-opts.StaleAfter)
	stale, err := s.repo.ListStale(ctx, []string{string(immersion.Anime), string(immersion.Manga)}, cutoff, opts.Limit)
	if err != nil {
		return nil, err
	}
	result := &RefreshResult{Checked: len(stale)}
	if len(stale) == 0 {
		return result, nil
	}

	var (
		updated atomic.Int64
		skipMux sync.Mutex
		skipped []string
	)
	// Rows that cannot be refreshed now are touched so later batches reach
	// the rows behind them.
	skip := func(id string) {
		skipMux.Lock()
		skipped = append(skipped, id)
		skipMux.Unlock()
	}

	pool := anilist.NewWorkerPool(ctx, opts.Workers, s.logger)
	pool.Start()
	for i := range stale {
		media := stale[i]
		submitted := pool.Submit(func(ctx context.Context) error {
			if err := s.fetchAniList(ctx, &media, immersion.LogType(media.Type)); err != nil {
				if errors.Is(err, errNoAniListID) {
					skip(media.ID)
					return nil
				}
				if ctx.Err() == nil {
					skip(media.ID)
				}
				s.metrics.RecordMediaLookupFailure("anilist")
				return fmt.Errorf("refresh %s: %w", media.ContentID, err)
			}
			media.UpdatedAt = r.now()
			if err := s.repo.Upsert(ctx, &media); err != nil {
				return err
			}
			if s.cache != nil {
				if err := s.cache.Invalidate(ctx, media.ID); err != nil {
					s.logger.Warn("media_cache_invalidate_failed", "media_id", media.ID, "error", err)
				}
			}
			updated.Add(1)
			return nil
		})
		if !submitted {
			break
		}
	}
	result.Failed = pool.Wait()
	result.Updated = int(updated.Load())

	if len(skipped) > 0 {
		sort.Strings(skipped)
		if err := s.repo.Touch(ctx, skipped, r.now()); err != nil {
			s.logger.Warn("media_refresh_touch_failed", "media_ids", len(skipped), "error", err)
		}
	}

	s.logger.Info("media_refresh_finished",
		"checked", result.Checked,
		"updated", result.Updated,
		"failed", result.Failed,
		"skipped", len(skipped),
	)
	return result, ctx.Err()
}
