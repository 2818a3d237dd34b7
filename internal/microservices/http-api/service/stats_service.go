package service

import (
	"context"
	"log/slog"
	"time"

	"immersionhub/internal/immersion"
	"immersionhub/internal/metrics"
	"immersionhub/internal/microservices/http-api/models"
	"immersionhub/internal/microservices/http-api/repository"
)

// DailyGoalProgress is the "today" dashboard: every goal of the user, newest
// first, with the current local day's sums and completion flags.
type DailyGoalProgress struct {
	Goals         []models.DailyGoal
	TodayProgress immersion.DailyProgress
}

// StatsRequest selects a statistics window. Type and Location are optional.
type StatsRequest struct {
	TimeRange string
	Type      string
	Location  *time.Location
}

type StatsService interface {
	GetDailyGoalProgress(ctx context.Context, userID string, loc *time.Location) (*DailyGoalProgress, error)
	GetPeriodStatistics(ctx context.Context, userID string, req StatsRequest) (*immersion.PeriodStatistics, error)
}

type statsService struct {
	logs    repository.LogRepository
	goals   repository.GoalRepository
	media   MediaService
	engine  *immersion.Engine
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

func NewStatsService(logs repository.LogRepository, goals repository.GoalRepository, media MediaService, engine *immersion.Engine, rec metrics.Recorder, logger *slog.Logger) StatsService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &statsService{
		logs:    logs,
		goals:   goals,
		media:   media,
		engine:  engine,
		metrics: rec,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *statsService) GetDailyGoalProgress(ctx context.Context, userID string, loc *time.Location) (*DailyGoalProgress, error) {
	started := time.Now()
	if loc == nil {
		loc = time.UTC
	}

	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := immersion.DayWindow(s.now(), loc)
	rows, err := s.logs.ListByUser(ctx, userID, repository.LogFilter{From: &dayStart, To: &dayEnd, SkipMedia: true})
	if err != nil {
		return nil, err
	}

	entries := models.ToEntries(rows)
	durations := s.media.EpisodeDurations(ctx, immersion.MediaIDsNeedingDuration(entries))
	progress := s.engine.DailyProgress(dayStart, entries, models.ToGoals(goals), durations)

	s.metrics.ObserveAggregation("daily", time.Since(started))
	s.logger.Debug("daily_progress_computed",
		"user_id", userID,
		"logs", len(rows),
		"goals", len(goals),
		"time", progress.Time,
	)

	return &DailyGoalProgress{Goals: goals, TodayProgress: progress}, nil
}

func (s *statsService) GetPeriodStatistics(ctx context.Context, userID string, req StatsRequest) (*immersion.PeriodStatistics, error) {
	started := time.Now()

	timeRange, err := immersion.ParseTimeRange(req.TimeRange)
	if err != nil {
		return nil, InvalidArgument(err.Error())
	}
	var logType immersion.LogType
	if req.Type != "" && req.Type != "all" {
		if logType, err = immersion.ParseLogType(req.Type); err != nil {
			return nil, ErrInvalidLogType
		}
	}
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}

	now := s.now()
	from, to := timeRange.Window(now, loc)
	rows, err := s.logs.ListByUser(ctx, userID, repository.LogFilter{
		From:      from,
		To:        to,
		Type:      string(logType),
		SkipMedia: true,
	})
	if err != nil {
		return nil, err
	}

	entries := models.ToEntries(rows)
	durations := s.media.EpisodeDurations(ctx, immersion.MediaIDsNeedingDuration(entries))
	stats := s.engine.Statistics(immersion.StatsQuery{
		Range:    timeRange,
		Type:     logType,
		Location: loc,
		Now:      now,
	}, entries, durations)

	s.metrics.ObserveAggregation("period", time.Since(started))
	s.logger.Debug("period_statistics_computed",
		"user_id", userID,
		"time_range", timeRange,
		"type", logType,
		"logs", len(rows),
	)
	return &stats, nil
}
