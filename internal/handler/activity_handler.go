package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/learnhub-backend/internal/middleware"
	"github.com/stemsi/learnhub-backend/internal/model"
	"github.com/stemsi/learnhub-backend/internal/response"
	"github.com/stemsi/learnhub-backend/internal/service"
	"github.com/stemsi/learnhub-backend/internal/validator"
)

// ActivityHandler accepts learning events from the course player.
type ActivityHandler struct {
	activityService *service.ActivityService
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// RecordActivity godoc
// POST /api/v1/learner/activity
// Queues a learning event. Usage and progress are updated asynchronously.
func (h *ActivityHandler) RecordActivity(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	learnerID, err := claims.LearnerUUID()
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	var req model.RecordActivityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	event, err := h.activityService.Record(c.Request.Context(), learnerID, req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, event)
}
