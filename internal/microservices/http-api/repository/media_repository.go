package repository

import (
	"context"
	"fmt"
	"time"

	"immersionhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MediaRepository interface {
	FindByID(ctx context.Context, id string) (*models.Media, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Media, error)
	FindByContentID(ctx context.Context, contentID, mediaType string) (*models.Media, error)
	// Upsert inserts media or refreshes the catalog fields of the row with the
	// same content id and type. media.ID is set to the stored row's id.
	Upsert(ctx context.Context, media *models.Media) error
	// ListStale returns media of the given types last updated before cutoff,
	// oldest first.
	ListStale(ctx context.Context, types []string, cutoff time.Time, limit int) ([]models.Media, error)
	// Touch sets updated_at on ids without changing catalog fields.
	Touch(ctx context.Context, ids []string, at time.Time) error
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) FindByID(ctx context.Context, id string) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &media, nil
}

func (r *mediaRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Media, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var media []models.Media
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&media).Error; err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	return media, nil
}

func (r *mediaRepository) FindByContentID(ctx context.Context, contentID, mediaType string) (*models.Media, error) {
	var media models.Media
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND type = ?", contentID, mediaType).
		First(&media).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &media, nil
}

func (r *mediaRepository) Upsert(ctx context.Context, media *models.Media) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "content_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title_romaji", "title_english", "title_native", "description",
				"cover_image", "episode_duration", "episodes", "chapters",
				"volumes", "is_adult", "updated_at",
			}),
		}).
		Create(media).Error
	if err != nil {
		return fmt.Errorf("upsert media: %w", err)
	}

	// On conflict Postgres keeps the existing id, so read it back.
	stored, err := r.FindByContentID(ctx, media.ContentID, media.Type)
	if err != nil {
		return fmt.Errorf("reload media: %w", err)
	}
	media.ID = stored.ID
	return nil
}

func (r *mediaRepository) ListStale(ctx context.Context, types []string, cutoff time.Time, limit int) ([]models.Media, error) {
	var media []models.Media
	err := r.db.WithContext(ctx).
		Where("type IN ? AND updated_at < ?", types, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&media).Error
	if err != nil {
		return nil, fmt.Errorf("list stale media: %w", err)
	}
	return media, nil
}

func (r *mediaRepository) Touch(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("id IN ?", ids).
		UpdateColumn("updated_at", at).Error
	if err != nil {
		return fmt.Errorf("touch media: %w", err)
	}
	return nil
}
