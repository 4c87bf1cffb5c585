package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/learnhub-backend/internal/middleware"
	"github.com/stemsi/learnhub-backend/internal/model"
	"github.com/stemsi/learnhub-backend/internal/response"
	"github.com/stemsi/learnhub-backend/internal/validator"
)

// DashboardBuilder builds a learner dashboard; nil means no such learner.
type DashboardBuilder interface {
	GetDashboardByEmail(ctx context.Context, email string) (*model.Dashboard, error)
}

// UsageReader reads a learner's raw daily usage log.
type UsageReader interface {
	GetLearnerUsage(ctx context.Context, learnerID uuid.UUID) ([]model.UsageRecord, error)
}

// DashboardHandler handles learner dashboard endpoints.
type DashboardHandler struct {
	dashboards DashboardBuilder
	usage      UsageReader
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboards DashboardBuilder, usage UsageReader) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, usage: usage}
}

// GetMyDashboard godoc
// GET /api/v1/learner/dashboard
// Returns the dashboard of the authenticated learner.
func (h *DashboardHandler) GetMyDashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.Email == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	h.respondWithDashboard(c, claims.Email)
}

// LookupDashboard godoc
// GET /api/v1/admin/dashboards?email=
// Returns the dashboard of any learner, looked up by email.
func (h *DashboardHandler) LookupDashboard(c *gin.Context) {
	var req model.DashboardLookupRequest
	if fields := validator.BindQuery(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.respondWithDashboard(c, req.Email)
}

func (h *DashboardHandler) respondWithDashboard(c *gin.Context, email string) {
	dashboard, err := h.dashboards.GetDashboardByEmail(c.Request.Context(), email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrDashboardUnavailable)
		return
	}
	if dashboard == nil {
		response.Fail(c, http.StatusNotFound, response.ErrLearnerNotFound)
		return
	}

	response.Success(c, http.StatusOK, dashboard)
}

// GetLearnerUsage godoc
// GET /api/v1/admin/learners/:id/usage
// Returns the raw daily usage log of a learner, newest first.
func (h *DashboardHandler) GetLearnerUsage(c *gin.Context) {
	learnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	usage, err := h.usage.GetLearnerUsage(c.Request.Context(), learnerID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if usage == nil {
		usage = []model.UsageRecord{}
	}

	response.Success(c, http.StatusOK, gin.H{"usage": usage})
}
