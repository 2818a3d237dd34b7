package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"immersionhub/internal/immersion"
	"immersionhub/internal/ingestion/anilist"
	"immersionhub/internal/metrics"
	"immersionhub/internal/microservices/http-api/models"
	"immersionhub/internal/microservices/http-api/repository"
)

// MediaLookup resolves catalog metadata from AniList.
type MediaLookup interface {
	GetMediaByID(ctx context.Context, id int, mediaType anilist.MediaType) (*anilist.MediaData, error)
}

// MediaInput describes the media a user assigns to a log. For anime and manga
// with a numeric ContentID the catalog fields are filled from AniList; the
// values given here are used when AniList has none or cannot be reached.
// Fields left empty keep what is already stored for the same media.
type MediaInput struct {
	ContentID       string
	Type            string
	TitleRomaji     string
	TitleEnglish    string
	TitleNative     string
	Description     string
	CoverImage      string
	EpisodeDuration *float64
	Episodes        *int
	Chapters        *int
	Volumes         *int
}

type MediaService interface {
	GetByID(ctx context.Context, id string) (*models.Media, error)
	Resolve(ctx context.Context, in MediaInput) (*models.Media, error)
	// EpisodeDurations returns the known per-episode minutes for ids. Unknown
	// media and lookup failures are left out so callers use the fallback.
	EpisodeDurations(ctx context.Context, ids []string) immersion.EpisodeDurations
}

type mediaService struct {
	repo    repository.MediaRepository
	cache   repository.DurationCache
	lookup  MediaLookup
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewMediaService wires the catalog. cache and lookup may be nil.
func NewMediaService(repo repository.MediaRepository, cache repository.DurationCache, lookup MediaLookup, rec metrics.Recorder, logger *slog.Logger) MediaService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &mediaService{
		repo:    repo,
		cache:   cache,
		lookup:  lookup,
		metrics: rec,
		logger:  logger,
	}
}

func (s *mediaService) GetByID(ctx context.Context, id string) (*models.Media, error) {
	media, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMediaNotFound
	}
	return media, err
}

func (s *mediaService) Resolve(ctx context.Context, in MediaInput) (*models.Media, error) {
	contentID := strings.TrimSpace(in.ContentID)
	if contentID == "" {
		return nil, ErrMissingContentID
	}
	logType, err := immersion.ParseLogType(in.Type)
	if err != nil {
		return nil, ErrInvalidLogType
	}

	// Start from the stored row so fields the request leaves out, and that
	// AniList cannot supply right now, keep their catalog values.
	media, err := s.repo.FindByContentID(ctx, contentID, string(logType))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		media = &models.Media{ContentID: contentID, Type: string(logType)}
	case err != nil:
		return nil, err
	}
	applyMediaInput(media, in)
	if s.enrichFromAniList(ctx, media, logType) {
		media.UpdatedAt = time.Now()
	}

	if err := s.repo.Upsert(ctx, media); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, media.ID); err != nil {
			s.logger.Warn("media_cache_invalidate_failed", "media_id", media.ID, "error", err)
		}
	}

	s.logger.Info("media_resolved", "media_id", media.ID, "content_id", media.ContentID, "type", media.Type)
	return media, nil
}

// errNoAniListID marks media that cannot be looked up on AniList.
var errNoAniListID = errors.New("media has no AniList id")

// enrichFromAniList reports whether media now carries fresh AniList data.
func (s *mediaService) enrichFromAniList(ctx context.Context, media *models.Media, logType immersion.LogType) bool {
	if s.lookup == nil {
		return false
	}
	err := s.fetchAniList(ctx, media, logType)
	if err != nil && !errors.Is(err, errNoAniListID) {
		s.metrics.RecordMediaLookupFailure("anilist")
		s.logger.Warn("anilist_lookup_failed", "content_id", media.ContentID, "error", err)
	}
	return err == nil
}

// applyMediaInput overlays the fields the caller supplied. Empty strings and
// nil numbers leave the current value.
func applyMediaInput(media *models.Media, in MediaInput) {
	media.TitleRomaji = firstNonEmpty(in.TitleRomaji, media.TitleRomaji)
	media.TitleEnglish = firstNonEmpty(in.TitleEnglish, media.TitleEnglish)
	media.TitleNative = firstNonEmpty(in.TitleNative, media.TitleNative)
	media.Description = firstNonEmpty(in.Description, media.Description)
	media.CoverImage = firstNonEmpty(in.CoverImage, media.CoverImage)
	if in.EpisodeDuration != nil {
		media.EpisodeDuration = in.EpisodeDuration
	}
	if in.Episodes != nil {
		media.Episodes = in.Episodes
	}
	if in.Chapters != nil {
		media.Chapters = in.Chapters
	}
	if in.Volumes != nil {
		media.Volumes = in.Volumes
	}
}

// fetchAniList overwrites media's catalog fields with AniList's where AniList
// has a value.
func (s *mediaService) fetchAniList(ctx context.Context, media *models.Media, logType immersion.LogType) error {
	var mediaType anilist.MediaType
	switch logType {
	case immersion.Anime:
		mediaType = anilist.MediaTypeAnime
	case immersion.Manga:
		mediaType = anilist.MediaTypeManga
	default:
		return errNoAniListID
	}
	id, err := strconv.Atoi(media.ContentID)
	if err != nil || id <= 0 {
		return errNoAniListID
	}

	data, err := s.lookup.GetMediaByID(ctx, id, mediaType)
	if err != nil {
		return err
	}

	meta := anilist.ExtractMetadata(*data)
	media.TitleRomaji = firstNonEmpty(meta.TitleRomaji, media.TitleRomaji)
	media.TitleEnglish = firstNonEmpty(meta.TitleEnglish, media.TitleEnglish)
	media.TitleNative = firstNonEmpty(meta.TitleNative, media.TitleNative)
	media.Description = firstNonEmpty(meta.Description, media.Description)
	media.CoverImage = firstNonEmpty(meta.CoverURL, media.CoverImage)
	media.IsAdult = meta.IsAdult
	if meta.EpisodeDuration != nil {
		media.EpisodeDuration = meta.EpisodeDuration
	}
	if meta.Episodes != nil {
		media.Episodes = meta.Episodes
	}
	if meta.Chapters != nil {
		media.Chapters = meta.Chapters
	}
	if meta.Volumes != nil {
		media.Volumes = meta.Volumes
	}
	return nil
}

func (s *mediaService) EpisodeDurations(ctx context.Context, ids []string) immersion.EpisodeDurations {
	out := immersion.EpisodeDurations{}
	if len(ids) == 0 {
		return out
	}

	misses := ids
	if s.cache != nil {
		hits, cacheMisses, err := s.cache.GetMany(ctx, ids)
		if err != nil {
			s.metrics.RecordMediaLookupFailure("cache")
			s.logger.Warn("media_cache_read_failed", "error", err)
		}
		for id, minutes := range hits {
			if minutes > 0 {
				out[id] = minutes
			}
		}
		misses = cacheMisses
	}
	if len(misses) == 0 {
		return out
	}

	media, err := s.repo.FindByIDs(ctx, misses)
	if err != nil {
		// Degrade to the fallback duration rather than failing the aggregation.
		s.metrics.RecordMediaLookupFailure("database")
		s.logger.Warn("media_duration_lookup_failed", "media_ids", len(misses), "error", err)
		return out
	}

	fresh := make(map[string]float64, len(misses))
	for _, id := range misses {
		fresh[id] = 0
	}
	for _, m := range media {
		if m.EpisodeDuration != nil && *m.EpisodeDuration > 0 {
			fresh[m.ID] = *m.EpisodeDuration
			out[m.ID] = *m.EpisodeDuration
		}
	}

	if s.cache != nil {
		if err := s.cache.SetMany(ctx, fresh); err != nil {
			s.logger.Warn("media_cache_write_failed", "error", err)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
