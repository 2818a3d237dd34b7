package dto

import (
	"time"

	"immersionhub/internal/immersion"
	"immersionhub/internal/microservices/http-api/models"
)

// DTOs for daily goal operations in HTTP API

type CreateGoalRequest struct {
	Type     string   `json:"type" binding:"required"`
	Target   *float64 `json:"target" binding:"required"`
	IsActive *bool    `json:"isActive"`
}

type UpdateGoalRequest struct {
	Type     *string  `json:"type"`
	Target   *float64 `json:"target"`
	IsActive *bool    `json:"isActive"`
}

type GoalResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Target    float64   `json:"target"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DailyGoalsResponse struct {
	Goals         []GoalResponse          `json:"goals"`
	TodayProgress immersion.DailyProgress `json:"todayProgress"`
}

func FromGoalModel(g models.DailyGoal) GoalResponse {
	return GoalResponse{
		ID:        g.ID,
		Type:      g.Type,
		Target:    g.Target,
		IsActive:  g.IsActive,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func FromGoalModels(goals []models.DailyGoal) []GoalResponse {
	out := make([]GoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, FromGoalModel(g))
	}
	return out
}
