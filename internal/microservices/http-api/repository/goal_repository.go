package repository

import (
	"context"
	"errors"
	"fmt"

	"immersionhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type GoalRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.DailyGoal, error)
	FindByID(ctx context.Context, userID, id string) (*models.DailyGoal, error)
	// FindActiveByType returns the user's active goal for goalType, ignoring
	// excludeID. It returns nil, nil when there is none.
	FindActiveByType(ctx context.Context, userID, goalType, excludeID string) (*models.DailyGoal, error)
	Create(ctx context.Context, goal *models.DailyGoal) error
	Update(ctx context.Context, goal *models.DailyGoal) error
	Delete(ctx context.Context, userID, id string) error
	// Transaction runs fn against a repository bound to one database
	// transaction. The check-then-write of goal lifecycle rules runs inside it.
	Transaction(ctx context.Context, fn func(GoalRepository) error) error
}

type goalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

// ListByUser returns all goals of a user, newest first.
func (r *goalRepository) ListByUser(ctx context.Context, userID string) ([]models.DailyGoal, error) {
	var goals []models.DailyGoal
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (r *goalRepository) FindByID(ctx context.Context, userID, id string) (*models.DailyGoal, error) {
	var goal models.DailyGoal
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&goal).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &goal, nil
}

func (r *goalRepository) FindActiveByType(ctx context.Context, userID, goalType, excludeID string) (*models.DailyGoal, error) {
	var goal models.DailyGoal

	query := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND is_active", userID, goalType)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	err := query.Order("created_at DESC").First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active goal: %w", err)
	}
	return &goal, nil
}

func (r *goalRepository) Create(ctx context.Context, goal *models.DailyGoal) error {
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return fmt.Errorf("create goal: %w", translateError(err))
	}
	return nil
}

func (r *goalRepository) Update(ctx context.Context, goal *models.DailyGoal) error {
	result := r.db.WithContext(ctx).
		Model(&models.DailyGoal{}).
		Where("id = ? AND user_id = ?", goal.ID, goal.UserID).
		Updates(map[string]any{
			"type":      goal.Type,
			"target":    goal.Target,
			"is_active": goal.IsActive,
		})
	if result.Error != nil {
		return fmt.Errorf("update goal: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *goalRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.DailyGoal{})
	if result.Error != nil {
		return fmt.Errorf("delete goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *goalRepository) Transaction(ctx context.Context, fn func(GoalRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&goalRepository{db: tx})
	})
}
