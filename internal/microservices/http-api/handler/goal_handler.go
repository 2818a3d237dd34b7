package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"immersionhub/internal/microservices/http-api/dto"
	"immersionhub/internal/microservices/http-api/service"
)

// Options carries the request defaults shared by every handler.
type Options struct {
	Location *time.Location
	Timeout  time.Duration
	Logger   *slog.Logger

	ImportMaxRows  int
	ImportMaxBytes int64
}

type GoalHandler struct {
	goals    service.GoalService
	stats    service.StatsService
	location *time.Location
	timeout  time.Duration
	logger   *slog.Logger
}

func NewGoalHandler(goals service.GoalService, stats service.StatsService, opts Options) *GoalHandler {
	return &GoalHandler{
		goals:    goals,
		stats:    stats,
		location: opts.Location,
		timeout:  orDefaultTimeout(opts.Timeout),
		logger:   orDefaultLogger(opts.Logger),
	}
}

// RegisterRoutes registers daily goal routes
func (h *GoalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	goals := rg.Group("/goals/daily")
	{
		goals.GET("", h.Today)
		goals.POST("", h.Create)
		goals.PATCH("/:id", h.Update)
		goals.DELETE("/:id", h.Delete)
	}
}

// Today returns every goal of the user with today's progress.
// GET /api/goals/daily?tz=Asia/Tokyo
func (h *GoalHandler) Today(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	loc, ok := requestLocation(c, h.location)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	progress, err := h.stats.GetDailyGoalProgress(ctx, userID, loc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.DailyGoalsResponse{
		Goals:         dto.FromGoalModels(progress.Goals),
		TodayProgress: progress.TodayProgress,
	})
}

// POST /api/goals/daily
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	goal, err := h.goals.Create(ctx, userID, service.CreateGoalInput{
		Type:     req.Type,
		Target:   req.Target,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromGoalModel(*goal))
}

// PATCH /api/goals/daily/:id
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	goal, err := h.goals.Update(ctx, userID, id, service.UpdateGoalInput{
		Type:     req.Type,
		Target:   req.Target,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromGoalModel(*goal))
}

// DELETE /api/goals/daily/:id
func (h *GoalHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.goals.Delete(ctx, userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
