package service

import (
	"context"
	"errors"
	"log/slog"

	"immersionhub/internal/immersion"
	"immersionhub/internal/metrics"
	"immersionhub/internal/microservices/http-api/models"
	"immersionhub/internal/microservices/http-api/repository"
)

// CreateGoalInput carries a new goal. IsActive defaults to true.
type CreateGoalInput struct {
	Type     string
	Target   *float64
	IsActive *bool
}

// UpdateGoalInput is a partial update; nil fields are left unchanged.
type UpdateGoalInput struct {
	Type     *string
	Target   *float64
	IsActive *bool
}

type GoalService interface {
	List(ctx context.Context, userID string) ([]models.DailyGoal, error)
	Create(ctx context.Context, userID string, in CreateGoalInput) (*models.DailyGoal, error)
	Update(ctx context.Context, userID, goalID string, in UpdateGoalInput) (*models.DailyGoal, error)
	Delete(ctx context.Context, userID, goalID string) error
}

type goalService struct {
	repo    repository.GoalRepository
	metrics metrics.Recorder
	logger  *slog.Logger
}

func NewGoalService(repo repository.GoalRepository, rec metrics.Recorder, logger *slog.Logger) GoalService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &goalService{repo: repo, metrics: rec, logger: logger}
}

func (s *goalService) List(ctx context.Context, userID string) ([]models.DailyGoal, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *goalService) Create(ctx context.Context, userID string, in CreateGoalInput) (*models.DailyGoal, error) {
	goalType, err := immersion.ParseDimension(in.Type)
	if err != nil {
		return nil, ErrInvalidGoalType
	}
	if in.Target == nil || *in.Target <= 0 {
		return nil, ErrInvalidTarget
	}

	goal := &models.DailyGoal{
		UserID:   userID,
		Type:     string(goalType),
		Target:   *in.Target,
		IsActive: true,
	}
	if in.IsActive != nil {
		goal.IsActive = *in.IsActive
	}

	err = s.repo.Transaction(ctx, func(tx repository.GoalRepository) error {
		if goal.IsActive {
			if err := s.ensureNoActiveGoal(ctx, tx, userID, goal.Type, ""); err != nil {
				return err
			}
		}
		return tx.Create(ctx, goal)
	})
	if err != nil {
		return nil, s.mapWriteError(err, userID, goal.Type)
	}

	s.logger.Info("goal_created",
		"user_id", userID,
		"goal_id", goal.ID,
		"type", goal.Type,
		"target", goal.Target,
		"is_active", goal.IsActive,
	)
	return goal, nil
}

func (s *goalService) Update(ctx context.Context, userID, goalID string, in UpdateGoalInput) (*models.DailyGoal, error) {
	var updated *models.DailyGoal
	// Type the goal ends up with, for labelling conflicts.
	resolvedType := ""

	err := s.repo.Transaction(ctx, func(tx repository.GoalRepository) error {
		goal, err := tx.FindByID(ctx, userID, goalID)
		if err != nil {
			return err
		}
		resolvedType = goal.Type

		wasActive := goal.IsActive
		typeChanged := false

		if in.Type != nil {
			goalType, err := immersion.ParseDimension(*in.Type)
			if err != nil {
				return ErrInvalidGoalType
			}
			typeChanged = string(goalType) != goal.Type
			goal.Type = string(goalType)
			resolvedType = goal.Type
		}
		if in.Target != nil {
			if *in.Target <= 0 {
				return ErrInvalidTarget
			}
			goal.Target = *in.Target
		}
		if in.IsActive != nil {
			goal.IsActive = *in.IsActive
		}

		// Only transitions that end Active under a new (type, active) pair
		// can collide; deactivating or retargeting never does.
		if goal.IsActive && (typeChanged || !wasActive) {
			if err := s.ensureNoActiveGoal(ctx, tx, userID, goal.Type, goal.ID); err != nil {
				return err
			}
		}

		if err := tx.Update(ctx, goal); err != nil {
			return err
		}
		updated = goal
		return nil
	})
	if err != nil {
		return nil, s.mapWriteError(err, userID, resolvedType)
	}

	s.logger.Info("goal_updated", "user_id", userID, "goal_id", goalID)
	return updated, nil
}

func (s *goalService) Delete(ctx context.Context, userID, goalID string) error {
	if err := s.repo.Delete(ctx, userID, goalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	s.logger.Info("goal_deleted", "user_id", userID, "goal_id", goalID)
	return nil
}

func (s *goalService) ensureNoActiveGoal(ctx context.Context, tx repository.GoalRepository, userID, goalType, excludeID string) error {
	existing, err := tx.FindActiveByType(ctx, userID, goalType, excludeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrActiveGoalExists
	}
	return nil
}

// mapWriteError converts repository errors into service kinds. A unique
// violation means a concurrent writer activated the same type after our
// check passed.
func (s *goalService) mapWriteError(err error, userID, goalType string) error {
	switch {
	case errors.Is(err, ErrActiveGoalExists), errors.Is(err, repository.ErrDuplicate):
		s.metrics.RecordGoalConflict(goalType)
		s.logger.Warn("goal_conflict", "user_id", userID, "type", goalType)
		return ErrActiveGoalExists
	case errors.Is(err, repository.ErrNotFound):
		return ErrGoalNotFound
	}
	return err
}
