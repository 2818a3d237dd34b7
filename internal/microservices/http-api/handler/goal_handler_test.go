package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"immersionhub/internal/immersion"
	"immersionhub/internal/microservices/http-api/dto"
	"immersionhub/internal/microservices/http-api/models"
	"immersionhub/internal/microservices/http-api/service"
)

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func TestGoalHandler_Today(t *testing.T) {
	r, m := setupRouter(testUserID)

	progress := &service.DailyGoalProgress{
		Goals: []models.DailyGoal{{ID: "g1", Type: "time", Target: 60, IsActive: true}},
		TodayProgress: immersion.DailyProgress{
			Time:      64,
			Completed: immersion.Completion{Time: true},
		},
	}
	inTokyo := mock.MatchedBy(func(loc *time.Location) bool { return loc.String() == "Asia/Tokyo" })
	m.stats.On("GetDailyGoalProgress", mock.Anything, testUserID, inTokyo).Return(progress, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/goals/daily?tz=Asia/Tokyo", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.DailyGoalsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Goals, 1)
	assert.Equal(t, "g1", resp.Goals[0].ID)
	assert.True(t, resp.Goals[0].IsActive)
	assert.Equal(t, 64.0, resp.TodayProgress.Time)
	assert.True(t, resp.TodayProgress.Completed.Time)
	assert.Contains(t, w.Body.String(), `"todayProgress"`)
	m.stats.AssertExpectations(t)
}

func TestGoalHandler_Today_InvalidTimezone(t *testing.T) {
	r, m := setupRouter(testUserID)

	req := httptest.NewRequest(http.MethodGet, "/api/goals/daily?tz=Mars/Olympus", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.stats.AssertNotCalled(t, "GetDailyGoalProgress", mock.Anything, mock.Anything, mock.Anything)
}

func TestGoalHandler_Unauthenticated(t *testing.T) {
	r, _ := setupRouter("")

	req := httptest.NewRequest(http.MethodGet, "/api/goals/daily", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoalHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
	}{
		{"created", map[string]any{"type": "time", "target": 60}, nil, http.StatusCreated},
		{"conflict", map[string]any{"type": "time", "target": 60}, service.ErrActiveGoalExists, http.StatusConflict},
		{"invalid type", map[string]any{"type": "xp", "target": 60}, service.ErrInvalidGoalType, http.StatusBadRequest},
		{"unexpected", map[string]any{"type": "time", "target": 60}, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := setupRouter(testUserID)

			body := tt.body.(map[string]any)
			in := service.CreateGoalInput{Type: body["type"].(string), Target: floatPtr(60)}
			if tt.serviceErr != nil {
				m.goals.On("Create", mock.Anything, testUserID, in).Return(nil, tt.serviceErr)
			} else {
				m.goals.On("Create", mock.Anything, testUserID, in).
					Return(&models.DailyGoal{ID: "g1", Type: "time", Target: 60, IsActive: true}, nil)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/goals/daily", jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "db down")
			}
			if tt.wantStatus == http.StatusConflict {
				assert.Contains(t, w.Body.String(), "already exists")
			}
			m.goals.AssertExpectations(t)
		})
	}
}

func TestGoalHandler_Create_MissingTarget(t *testing.T) {
	r, m := setupRouter(testUserID)

	req := httptest.NewRequest(http.MethodPost, "/api/goals/daily", jsonBody(t, map[string]any{"type": "time"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.goals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestGoalHandler_Update(t *testing.T) {
	r, m := setupRouter(testUserID)

	in := service.UpdateGoalInput{IsActive: boolPtr(false)}
	m.goals.On("Update", mock.Anything, testUserID, testGoalID, in).
		Return(&models.DailyGoal{ID: testGoalID, Type: "time", Target: 60, IsActive: false}, nil)
	m.goals.On("Update", mock.Anything, testUserID, missingID, in).Return(nil, service.ErrGoalNotFound)

	req := httptest.NewRequest(http.MethodPatch, "/api/goals/daily/"+testGoalID, jsonBody(t, map[string]any{"isActive": false}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.GoalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsActive)

	req = httptest.NewRequest(http.MethodPatch, "/api/goals/daily/"+missingID, jsonBody(t, map[string]any{"isActive": false}))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"goal not found"}`, w.Body.String())
}

func TestGoalHandler_Delete(t *testing.T) {
	r, m := setupRouter(testUserID)

	m.goals.On("Delete", mock.Anything, testUserID, testGoalID).Return(nil)
	m.goals.On("Delete", mock.Anything, testUserID, missingID).Return(service.ErrGoalNotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/goals/daily/"+testGoalID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/goals/daily/"+missingID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	m.goals.AssertExpectations(t)
}

func TestGoalHandler_MalformedID(t *testing.T) {
	r, m := setupRouter(testUserID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/goals/daily/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid id"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPatch, "/api/goals/daily/not-a-uuid", jsonBody(t, map[string]any{"isActive": false}))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	m.goals.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	m.goals.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
