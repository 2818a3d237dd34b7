package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"immersionhub/internal/immersion"
	"immersionhub/internal/importer"
	"immersionhub/internal/metrics"
	"immersionhub/internal/microservices/http-api/models"
	"immersionhub/internal/microservices/http-api/repository"

	"github.com/google/uuid"
)

// LogInput is the full set of user-editable log fields. Update replaces every
// field with these values.
type LogInput struct {
	Type        string
	Date        time.Time
	Description string
	Time        *float64
	Episodes    *int
	Pages       *int
	Chars       *int
	MediaID     *string
}

// LogListFilter narrows List. Type is a log type name; empty means all.
type LogListFilter struct {
	From  *time.Time
	To    *time.Time
	Type  string
	Limit int
}

// ImportResult reports a bulk import.
type ImportResult struct {
	Imported int                 `json:"imported"`
	Skipped  int                 `json:"skipped"`
	Errors   []importer.RowError `json:"errors"`
}

type LogService interface {
	List(ctx context.Context, userID string, filter LogListFilter) ([]models.ImmersionLog, error)
	Get(ctx context.Context, userID, logID string) (*models.ImmersionLog, error)
	Create(ctx context.Context, userID string, in LogInput) (*models.ImmersionLog, error)
	Update(ctx context.Context, userID, logID string, in LogInput) (*models.ImmersionLog, error)
	Delete(ctx context.Context, userID, logID string) error
	AssignMedia(ctx context.Context, userID, logID string, in MediaInput) (*models.ImmersionLog, error)
	Import(ctx context.Context, userID string, records []importer.Record, parseErrors []importer.RowError) (*ImportResult, error)
}

type logService struct {
	repo    repository.LogRepository
	media   MediaService
	engine  *immersion.Engine
	xpRule  immersion.XPRule
	metrics metrics.Recorder
	logger  *slog.Logger
}

func NewLogService(repo repository.LogRepository, media MediaService, engine *immersion.Engine, rec metrics.Recorder, logger *slog.Logger) LogService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &logService{
		repo:    repo,
		media:   media,
		engine:  engine,
		xpRule:  immersion.DefaultXPRule,
		metrics: rec,
		logger:  logger,
	}
}

func (s *logService) List(ctx context.Context, userID string, filter LogListFilter) ([]models.ImmersionLog, error) {
	repoFilter := repository.LogFilter{
		From:  filter.From,
		To:    filter.To,
		Limit: filter.Limit,
	}
	if filter.Type != "" {
		logType, err := immersion.ParseLogType(filter.Type)
		if err != nil {
			return nil, ErrInvalidLogType
		}
		repoFilter.Type = string(logType)
	}
	return s.repo.ListByUser(ctx, userID, repoFilter)
}

func (s *logService) Get(ctx context.Context, userID, logID string) (*models.ImmersionLog, error) {
	log, err := s.repo.FindByID(ctx, userID, logID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLogNotFound
	}
	return log, err
}

func (s *logService) Create(ctx context.Context, userID string, in LogInput) (*models.ImmersionLog, error) {
	log, err := s.buildLog(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	log.XP = s.xpRule(log.ToEntry(), s.engine.FallbackMinutes())

	if err := s.repo.Create(ctx, log); err != nil {
		return nil, err
	}

	s.metrics.RecordLogsCreated(log.Type, 1)
	s.logger.Info("log_created", "user_id", userID, "log_id", log.ID, "type", log.Type, "xp", log.XP)
	return log, nil
}

// Update replaces the log's fields. XP stays as assigned at creation.
func (s *logService) Update(ctx context.Context, userID, logID string, in LogInput) (*models.ImmersionLog, error) {
	existing, err := s.Get(ctx, userID, logID)
	if err != nil {
		return nil, err
	}

	log, err := s.buildLog(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	log.ID = existing.ID
	log.XP = existing.XP
	log.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, log); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	s.logger.Info("log_updated", "user_id", userID, "log_id", logID)
	return s.Get(ctx, userID, logID)
}

func (s *logService) Delete(ctx context.Context, userID, logID string) error {
	if err := s.repo.Delete(ctx, userID, logID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogNotFound
		}
		return err
	}
	s.logger.Info("log_deleted", "user_id", userID, "log_id", logID)
	return nil
}

// AssignMedia upserts the described media into the catalog and links it to the log.
func (s *logService) AssignMedia(ctx context.Context, userID, logID string, in MediaInput) (*models.ImmersionLog, error) {
	log, err := s.Get(ctx, userID, logID)
	if err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = log.Type
	}

	media, err := s.media.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	log.MediaID = &media.ID
	log.Media = nil
	if err := s.repo.Update(ctx, log); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	log.Media = media

	s.logger.Info("log_media_assigned", "user_id", userID, "log_id", logID, "media_id", media.ID)
	return log, nil
}

// Import validates parsed rows and inserts the valid ones in one batch.
// Rows failing validation are reported alongside the parser's row errors.
func (s *logService) Import(ctx context.Context, userID string, records []importer.Record, parseErrors []importer.RowError) (*ImportResult, error) {
	result := &ImportResult{Errors: append([]importer.RowError{}, parseErrors...)}

	logs := make([]models.ImmersionLog, 0, len(records))
	counts := make(map[string]int)
	for _, rec := range records {
		in := LogInput{
			Type:        rec.Type,
			Date:        rec.Date,
			Description: rec.Description,
			Time:        rec.Time,
			Episodes:    rec.Episodes,
			Pages:       rec.Pages,
			Chars:       rec.Chars,
		}
		log, err := s.buildLog(ctx, userID, in)
		if err != nil {
			result.Errors = append(result.Errors, importer.RowError{Line: rec.Line, Message: err.Error()})
			continue
		}
		log.XP = s.xpRule(log.ToEntry(), s.engine.FallbackMinutes())
		logs = append(logs, *log)
		counts[log.Type]++
	}

	if err := s.repo.CreateBatch(ctx, logs); err != nil {
		return nil, err
	}

	for logType, n := range counts {
		s.metrics.RecordLogsCreated(logType, n)
	}
	result.Imported = len(logs)
	result.Skipped = len(result.Errors)

	s.logger.Info("logs_imported", "user_id", userID, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func (s *logService) buildLog(ctx context.Context, userID string, in LogInput) (*models.ImmersionLog, error) {
	logType, err := immersion.ParseLogType(in.Type)
	if err != nil {
		return nil, ErrInvalidLogType
	}
	if in.Date.IsZero() {
		return nil, ErrMissingDate
	}
	if in.Time == nil && in.Episodes == nil && in.Pages == nil && in.Chars == nil {
		return nil, ErrNoAmount
	}
	if negativeFloat(in.Time) || negativeInt(in.Episodes) || negativeInt(in.Pages) || negativeInt(in.Chars) {
		return nil, ErrNegativeAmount
	}

	log := &models.ImmersionLog{
		UserID:      userID,
		Type:        string(logType),
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date.UTC(),
		Time:        in.Time,
		Episodes:    in.Episodes,
		Pages:       in.Pages,
		Chars:       in.Chars,
	}

	if in.MediaID != nil && *in.MediaID != "" {
		mediaID, err := uuid.Parse(*in.MediaID)
		if err != nil {
			return nil, ErrInvalidMediaID
		}
		media, err := s.media.GetByID(ctx, mediaID.String())
		if err != nil {
			return nil, err
		}
		log.MediaID = &media.ID
	}
	return log, nil
}

func negativeFloat(v *float64) bool {
	return v != nil && *v < 0
}

func negativeInt(v *int) bool {
	return v != nil && *v < 0
}
