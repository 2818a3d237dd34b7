package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"immersionhub/internal/immersion"
	"immersionhub/internal/ingestion/anilist"
	"immersionhub/internal/metrics"
	"immersionhub/internal/microservices/http-api/models"
	"immersionhub/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func boolPtr(b bool) *bool        { return &b }
func stringPtr(s string) *string  { return &s }

// MockGoalRepository mocks the GoalRepository interface
type MockGoalRepository struct {
	mock.Mock
}

func (m *MockGoalRepository) ListByUser(ctx context.Context, userID string) ([]models.DailyGoal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyGoal), args.Error(1)
}

func (m *MockGoalRepository) FindByID(ctx context.Context, userID, id string) (*models.DailyGoal, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyGoal), args.Error(1)
}

func (m *MockGoalRepository) FindActiveByType(ctx context.Context, userID, goalType, excludeID string) (*models.DailyGoal, error) {
	args := m.Called(ctx, userID, goalType, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyGoal), args.Error(1)
}

func (m *MockGoalRepository) Create(ctx context.Context, goal *models.DailyGoal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) Update(ctx context.Context, goal *models.DailyGoal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// Transaction runs fn against the mock itself.
func (m *MockGoalRepository) Transaction(ctx context.Context, fn func(repository.GoalRepository) error) error {
	return fn(m)
}

// MockLogRepository mocks the LogRepository interface
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Create(ctx context.Context, log *models.ImmersionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockLogRepository) CreateBatch(ctx context.Context, logs []models.ImmersionLog) error {
	args := m.Called(ctx, logs)
	return args.Error(0)
}

func (m *MockLogRepository) FindByID(ctx context.Context, userID, id string) (*models.ImmersionLog, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImmersionLog), args.Error(1)
}

func (m *MockLogRepository) ListByUser(ctx context.Context, userID string, filter repository.LogFilter) ([]models.ImmersionLog, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ImmersionLog), args.Error(1)
}

func (m *MockLogRepository) Update(ctx context.Context, log *models.ImmersionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockLogRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockMediaRepository mocks the MediaRepository interface
type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) FindByID(ctx context.Context, id string) (*models.Media, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Media, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Media), args.Error(1)
}

func (m *MockMediaRepository) FindByContentID(ctx context.Context, contentID, mediaType string) (*models.Media, error) {
	args := m.Called(ctx, contentID, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaRepository) Upsert(ctx context.Context, media *models.Media) error {
	args := m.Called(ctx, media)
	return args.Error(0)
}

func (m *MockMediaRepository) ListStale(ctx context.Context, types []string, cutoff time.Time, limit int) ([]models.Media, error) {
	args := m.Called(ctx, types, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Media), args.Error(1)
}

func (m *MockMediaRepository) Touch(ctx context.Context, ids []string, at time.Time) error {
	args := m.Called(ctx, ids, at)
	return args.Error(0)
}

// MockMediaService mocks the MediaService interface
type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) GetByID(ctx context.Context, id string) (*models.Media, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaService) Resolve(ctx context.Context, in MediaInput) (*models.Media, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaService) EpisodeDurations(ctx context.Context, ids []string) immersion.EpisodeDurations {
	args := m.Called(ctx, ids)
	return args.Get(0).(immersion.EpisodeDurations)
}

// MockMediaLookup mocks the AniList client
type MockMediaLookup struct {
	mock.Mock
}

func (m *MockMediaLookup) GetMediaByID(ctx context.Context, id int, mediaType anilist.MediaType) (*anilist.MediaData, error) {
	args := m.Called(ctx, id, mediaType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anilist.MediaData), args.Error(1)
}

// recordingMetrics keeps what services report.
type recordingMetrics struct {
	metrics.Nop
	mu             sync.Mutex
	conflicts      []string
	lookupFailures []string
	created        map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{created: map[string]int{}}
}

func (r *recordingMetrics) RecordGoalConflict(goalType string) {
	r.conflicts = append(r.conflicts, goalType)
}

func (r *recordingMetrics) RecordMediaLookupFailure(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookupFailures = append(r.lookupFailures, source)
}

func (r *recordingMetrics) RecordLogsCreated(logType string, count int) {
	r.created[logType] += count
}
