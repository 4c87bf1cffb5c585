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

// AuthHandler handles staff authentication endpoints. Learners authenticate
// against the LMS, which issues learner tokens with the shared secret.
type AuthHandler struct {
	authService  *service.AuthService
	adminService *service.AdminService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, adminService *service.AdminService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		adminService: adminService,
	}
}

func adminView(admin *model.Admin) gin.H {
	return gin.H{
		"id":        admin.ID,
		"email":     admin.Email,
		"name":      admin.Name,
		"role_id":   admin.RoleID,
		"role_name": admin.RoleName,
	}
}

// GetAdminProfile godoc
// GET /api/v1/auth/admin/me
// Returns the profile of the currently authenticated admin.
func (h *AuthHandler) GetAdminProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, err := h.adminService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	permissions, err := h.adminService.GetPermissions(c.Request.Context(), admin.RoleID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"admin":       adminView(admin),
		"permissions": permissions,
	})
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Validates email + password, returns JWT with permissions.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	permissions, err := h.adminService.GetPermissions(c.Request.Context(), admin.RoleID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateAdminToken(admin.ID, admin.RoleID, admin.Email, permissions)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":       token,
		"admin":       adminView(admin),
		"permissions": permissions,
	})
}
