package handler_test

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"immersionhub/internal/immersion"
	"immersionhub/internal/importer"
	"immersionhub/internal/microservices/http-api/handler"
	"immersionhub/internal/microservices/http-api/models"
	"immersionhub/internal/microservices/http-api/service"
)

const (
	testUserID  = "8a1c9e2d-5b7f-4c3a-9d6e-1f2a3b4c5d6e"
	testGoalID  = "2f4b6d8e-1a3c-4e5f-8a7b-9c0d1e2f3a4b"
	testLogID   = "5c7e9a1b-3d5f-4a6b-8c9d-0e1f2a3b4c5d"
	testMediaID = "7e9a1c3d-5f7b-4c8d-9e0f-1a2b3c4d5e6f"
	missingID   = "0c5e9f3a-7d21-4b8e-a6f4-93d2e1c0b7aa"
)

// --- HELPER FUNCTIONS FOR POINTERS ---
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func boolPtr(b bool) *bool        { return &b }

// --- MOCK SERVICES ---

type MockGoalService struct {
	mock.Mock
}

func (m *MockGoalService) List(ctx context.Context, userID string) ([]models.DailyGoal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyGoal), args.Error(1)
}

func (m *MockGoalService) Create(ctx context.Context, userID string, in service.CreateGoalInput) (*models.DailyGoal, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyGoal), args.Error(1)
}

func (m *MockGoalService) Update(ctx context.Context, userID, goalID string, in service.UpdateGoalInput) (*models.DailyGoal, error) {
	args := m.Called(ctx, userID, goalID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyGoal), args.Error(1)
}

func (m *MockGoalService) Delete(ctx context.Context, userID, goalID string) error {
	args := m.Called(ctx, userID, goalID)
	return args.Error(0)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetDailyGoalProgress(ctx context.Context, userID string, loc *time.Location) (*service.DailyGoalProgress, error) {
	args := m.Called(ctx, userID, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DailyGoalProgress), args.Error(1)
}

func (m *MockStatsService) GetPeriodStatistics(ctx context.Context, userID string, req service.StatsRequest) (*immersion.PeriodStatistics, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*immersion.PeriodStatistics), args.Error(1)
}

type MockLogService struct {
	mock.Mock
}

func (m *MockLogService) List(ctx context.Context, userID string, filter service.LogListFilter) ([]models.ImmersionLog, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ImmersionLog), args.Error(1)
}

func (m *MockLogService) Get(ctx context.Context, userID, logID string) (*models.ImmersionLog, error) {
	args := m.Called(ctx, userID, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImmersionLog), args.Error(1)
}

func (m *MockLogService) Create(ctx context.Context, userID string, in service.LogInput) (*models.ImmersionLog, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImmersionLog), args.Error(1)
}

func (m *MockLogService) Update(ctx context.Context, userID, logID string, in service.LogInput) (*models.ImmersionLog, error) {
	args := m.Called(ctx, userID, logID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImmersionLog), args.Error(1)
}

func (m *MockLogService) Delete(ctx context.Context, userID, logID string) error {
	args := m.Called(ctx, userID, logID)
	return args.Error(0)
}

func (m *MockLogService) AssignMedia(ctx context.Context, userID, logID string, in service.MediaInput) (*models.ImmersionLog, error) {
	args := m.Called(ctx, userID, logID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImmersionLog), args.Error(1)
}

func (m *MockLogService) Import(ctx context.Context, userID string, records []importer.Record, parseErrors []importer.RowError) (*service.ImportResult, error) {
	args := m.Called(ctx, userID, records, parseErrors)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

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

func (m *MockMediaService) Resolve(ctx context.Context, in service.MediaInput) (*models.Media, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaService) EpisodeDurations(ctx context.Context, ids []string) immersion.EpisodeDurations {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(immersion.EpisodeDurations)
}

// --- SETUP ---

type mocks struct {
	goals *MockGoalService
	logs  *MockLogService
	stats *MockStatsService
	media *MockMediaService
}

func mockAuthMiddleware(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

// setupRouter builds the full router with stub auth. An empty userID leaves
// requests unauthenticated.
func setupRouter(userID string) (*gin.Engine, *mocks) {
	gin.SetMode(gin.TestMode)
	m := &mocks{
		goals: new(MockGoalService),
		logs:  new(MockLogService),
		stats: new(MockStatsService),
		media: new(MockMediaService),
	}

	var auth gin.HandlerFunc
	if userID != "" {
		auth = mockAuthMiddleware(userID)
	}

	r := handler.NewRouter(handler.RouterDeps{
		Goals: m.goals,
		Logs:  m.logs,
		Stats: m.stats,
		Media: m.media,
		Auth:  auth,
		Options: handler.Options{
			Location:       time.UTC,
			Timeout:        time.Second,
			ImportMaxRows:  10,
			ImportMaxBytes: 1 << 16,
		},
	})
	return r, m
}
