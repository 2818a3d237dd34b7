package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"immersionhub/internal/metrics"
	"immersionhub/internal/microservices/http-api/middleware"
	"immersionhub/internal/microservices/http-api/service"
)

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps holds everything NewRouter wires together.
type RouterDeps struct {
	Goals service.GoalService
	Logs  service.LogService
	Stats service.StatsService
	Media service.MediaService

	// Auth guards every /api route. Tests may pass a stub.
	Auth    gin.HandlerFunc
	Health  HealthChecker
	Metrics metrics.Recorder
	// MetricsHandler is served at /metrics when non-nil.
	MetricsHandler http.Handler

	CORSOrigins []string
	Options     Options
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := orDefaultLogger(deps.Options.Logger)
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger, rec))
	if len(deps.CORSOrigins) > 0 {
		r.Use(middleware.CORS(deps.CORSOrigins))
	}

	r.GET("/check-conn", checkConn(deps.Health))
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	api := r.Group("/api")
	if deps.Auth != nil {
		api.Use(deps.Auth)
	}

	NewGoalHandler(deps.Goals, deps.Stats, deps.Options).RegisterRoutes(api)
	NewLogHandler(deps.Logs, deps.Options).RegisterRoutes(api)
	NewStatsHandler(deps.Stats, deps.Options).RegisterRoutes(api)
	NewMediaHandler(deps.Media, deps.Options).RegisterRoutes(api)

	return r
}

func checkConn(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.PingContext(ctx); err != nil {
				slog.Warn("health_check_failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "API is alive and database connected"})
	}
}
