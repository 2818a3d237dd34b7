package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"immersionhub/internal/microservices/http-api/service"
)

type StatsHandler struct {
	stats    service.StatsService
	location *time.Location
	timeout  time.Duration
	logger   *slog.Logger
}

func NewStatsHandler(stats service.StatsService, opts Options) *StatsHandler {
	return &StatsHandler{
		stats:    stats,
		location: opts.Location,
		timeout:  orDefaultTimeout(opts.Timeout),
		logger:   orDefaultLogger(opts.Logger),
	}
}

func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.Period)
}

// Period returns aggregated statistics for a time range.
// GET /api/stats?timeRange=month&type=all&tz=UTC
func (h *StatsHandler) Period(c *gin.Context) {
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

	stats, err := h.stats.GetPeriodStatistics(ctx, userID, service.StatsRequest{
		TimeRange: c.Query("timeRange"),
		Type:      c.Query("type"),
		Location:  loc,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
