package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immersionhub/internal/metrics"
)

var testSecret = strings.Repeat("k", 32)

const testUserID = "8a1c9e2d-5b7f-4c3a-9d6e-1f2a3b4c5d6e"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func accessClaims(userID string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"type":    "access",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(NewTokenValidator(testSecret)))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID")})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := setupAuthRouter()

	expired := accessClaims(testUserID)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	refresh := accessClaims(testUserID)
	refresh["type"] = "refresh"

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, "invalid token"},
		{"wrong secret", "Bearer " + signToken(t, strings.Repeat("z", 32), accessClaims(testUserID)), http.StatusUnauthorized, "invalid token"},
		{"expired", "Bearer " + signToken(t, testSecret, expired), http.StatusUnauthorized, "invalid token"},
		{"refresh token", "Bearer " + signToken(t, testSecret, refresh), http.StatusUnauthorized, "invalid token"},
		{"no user", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), http.StatusUnauthorized, "invalid token"},
		{"non-uuid user", "Bearer " + signToken(t, testSecret, accessClaims("u1")), http.StatusUnauthorized, "invalid token"},
		{"valid", "Bearer " + signToken(t, testSecret, accessClaims(testUserID)), http.StatusOK, `"userID":"` + testUserID + `"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestTokenValidator_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, accessClaims(testUserID))
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenValidator(testSecret).Validate(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type requestRecorder struct {
	metrics.Nop
	routes   []string
	statuses []int
}

func (r *requestRecorder) RecordHTTPRequest(_, route string, status int, _ time.Duration) {
	r.routes = append(r.routes, route)
	r.statuses = append(r.statuses, status)
}

func TestRequestLogger_RecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &requestRecorder{}
	r := gin.New()
	r.Use(RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), rec))
	r.GET("/api/logs/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/api/logs/abc", "/nowhere"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{"/api/logs/:id", "unmatched"}, rec.routes)
	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound}, rec.statuses)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://app.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
