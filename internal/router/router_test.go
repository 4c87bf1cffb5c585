package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/handler"
	"github.com/stemsi/learnhub-backend/internal/middleware"
	"github.com/stemsi/learnhub-backend/internal/model"
	"github.com/stemsi/learnhub-backend/internal/service"
)

type oneDashboard struct{}

func (oneDashboard) GetDashboardByEmail(_ context.Context, email string) (*model.Dashboard, error) {
	if email != "ana@example.com" {
		return nil, nil
	}
	return &model.Dashboard{Learner: model.Learner{Email: email}}, nil
}

func (oneDashboard) GetLearnerUsage(context.Context, uuid.UUID) ([]model.UsageRecord, error) {
	return nil, nil
}

type noopCounter struct{}

func (noopCounter) Incr(context.Context, string) *redis.IntCmd {
	return redis.NewIntResult(1, nil)
}

func (noopCounter) Expire(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (noopCounter) RPush(context.Context, string, ...interface{}) *redis.IntCmd {
	return redis.NewIntResult(1, nil)
}

func testRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	cfg := &config.Config{GinMode: gin.TestMode, JWTSecret: "router-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	auth := service.NewAuthService(cfg)

	handlers := &Handlers{
		Auth:      handler.NewAuthHandler(auth, service.NewAdminService(nil)),
		Dashboard: handler.NewDashboardHandler(oneDashboard{}, oneDashboard{}),
		Activity:  handler.NewActivityHandler(service.NewActivityService(noopCounter{})),
		WS:        handler.NewWSHandler(oneDashboard{}, nil, zerolog.Nop(), nil),
	}
	limiters := &Limiters{
		Auth:     middleware.NewRateLimiter(noopCounter{}, "auth", 10, time.Minute, zerolog.Nop()),
		Activity: middleware.NewRateLimiter(noopCounter{}, "activity", 10, time.Minute, zerolog.Nop()),
	}
	return SetupRouter(auth, handlers, limiters, cfg), auth
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouteProtection(t *testing.T) {
	r, auth := testRouter(t)

	learner, err := auth.GenerateLearnerToken(uuid.New(), "ana@example.com")
	require.NoError(t, err)
	reader, err := auth.GenerateAdminToken(1, 1, "ops@example.com", []string{string(model.PermissionDashboardsRead)})
	require.NoError(t, err)
	noPerms, err := auth.GenerateAdminToken(2, 2, "intern@example.com", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"learner dashboard without token", "/api/v1/learner/dashboard", "", http.StatusUnauthorized},
		{"learner dashboard", "/api/v1/learner/dashboard", learner, http.StatusOK},
		{"admin token on learner route", "/api/v1/learner/dashboard", reader, http.StatusForbidden},
		{"learner token on admin route", "/api/v1/admin/dashboards?email=ana@example.com", learner, http.StatusForbidden},
		{"admin without permission", "/api/v1/admin/dashboards?email=ana@example.com", noPerms, http.StatusForbidden},
		{"admin lookup", "/api/v1/admin/dashboards?email=ana@example.com", reader, http.StatusOK},
		{"admin lookup unknown", "/api/v1/admin/dashboards?email=ghost@example.com", reader, http.StatusNotFound},
		{"usage needs learners:read", "/api/v1/admin/learners/" + uuid.NewString() + "/usage", reader, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if w.Code == http.StatusOK {
				assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			}
		})
	}
}
