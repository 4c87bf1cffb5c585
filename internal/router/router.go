package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/handler"
	"github.com/stemsi/learnhub-backend/internal/middleware"
	"github.com/stemsi/learnhub-backend/internal/model"
	"github.com/stemsi/learnhub-backend/internal/response"
	"github.com/stemsi/learnhub-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Activity  *handler.ActivityHandler
	WS        *handler.WSHandler
}

// Limiters groups the rate limiters applied to abuse-prone routes.
type Limiters struct {
	Auth     *middleware.RateLimiter
	Activity *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	limiters *Limiters,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		SkipPaths: []string{"/health"},
	}))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", limiters.Auth.Middleware(), handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Learner Group (Learner JWT) ────────────────────────────────
	learnerAPI := router.Group("/api/v1/learner")
	learnerAPI.Use(middleware.RequireLearnerJWT(authService))
	{
		learnerAPI.GET("/dashboard", middleware.NoStore(), handlers.Dashboard.GetMyDashboard)
		learnerAPI.POST("/activity", limiters.Activity.Middleware(), handlers.Activity.RecordActivity)
	}

	// ─── 3. WebSocket Group (Learner WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireLearnerWSAuth(authService))
	{
		ws.GET("/learner/dashboard/stream", handlers.WS.DashboardStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService), middleware.NoStore())
	{
		adminAPI.GET("/dashboards",
			middleware.RequirePermission(string(model.PermissionDashboardsRead)),
			handlers.Dashboard.LookupDashboard,
		)
		adminAPI.GET("/learners/:id/usage",
			middleware.RequirePermission(string(model.PermissionLearnersRead)),
			handlers.Dashboard.GetLearnerUsage,
		)
	}

	return router
}
