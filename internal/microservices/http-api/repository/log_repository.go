package repository

import (
	"context"
	"fmt"
	"time"

	"immersionhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// LogFilter narrows a log listing. Zero values mean no constraint.
type LogFilter struct {
	From  *time.Time // inclusive
	To    *time.Time // exclusive
	Type  string
	Limit int
	// SkipMedia leaves Media unloaded. Aggregation only needs MediaID.
	SkipMedia bool
}

type LogRepository interface {
	Create(ctx context.Context, log *models.ImmersionLog) error
	CreateBatch(ctx context.Context, logs []models.ImmersionLog) error
	FindByID(ctx context.Context, userID, id string) (*models.ImmersionLog, error)
	ListByUser(ctx context.Context, userID string, filter LogFilter) ([]models.ImmersionLog, error)
	Update(ctx context.Context, log *models.ImmersionLog) error
	Delete(ctx context.Context, userID, id string) error
}

type logRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Create(ctx context.Context, log *models.ImmersionLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("create log: %w", translateError(err))
	}
	return nil
}

// CreateBatch inserts all rows in one transaction; either every row lands or none.
func (r *logRepository) CreateBatch(ctx context.Context, logs []models.ImmersionLog) error {
	if len(logs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(logs, 200).Error
	})
	if err != nil {
		return fmt.Errorf("create logs: %w", translateError(err))
	}
	return nil
}

func (r *logRepository) FindByID(ctx context.Context, userID, id string) (*models.ImmersionLog, error) {
	var log models.ImmersionLog
	err := r.db.WithContext(ctx).
		Preload("Media").
		Where("id = ? AND user_id = ?", id, userID).
		First(&log).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &log, nil
}

func (r *logRepository) ListByUser(ctx context.Context, userID string, filter LogFilter) ([]models.ImmersionLog, error) {
	var logs []models.ImmersionLog

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !filter.SkipMedia {
		query = query.Preload("Media")
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date < ?", *filter.To)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Order("date DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}

func (r *logRepository) Update(ctx context.Context, log *models.ImmersionLog) error {
	result := r.db.WithContext(ctx).
		Model(&models.ImmersionLog{}).
		Where("id = ? AND user_id = ?", log.ID, log.UserID).
		Updates(map[string]any{
			"type":        log.Type,
			"description": log.Description,
			"time":        log.Time,
			"episodes":    log.Episodes,
			"pages":       log.Pages,
			"chars":       log.Chars,
			"date":        log.Date,
			"media_id":    log.MediaID,
			"xp":          log.XP,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("update log: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *logRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ImmersionLog{})
	if result.Error != nil {
		return fmt.Errorf("delete log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
