package service

import (
	"context"

	"github.com/stemsi/learnhub-backend/internal/model"
	"github.com/stemsi/learnhub-backend/internal/repository"
)

// AdminService handles CMS staff accounts.
type AdminService struct {
	adminRepo *repository.AdminRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository) *AdminService {
	return &AdminService{adminRepo: adminRepo}
}

// GetByEmail retrieves an admin by email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return s.adminRepo.GetByEmail(ctx, email)
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// GetPermissions retrieves permission codes for an admin's role.
func (s *AdminService) GetPermissions(ctx context.Context, roleID int) ([]string, error) {
	return s.adminRepo.GetPermissionsByRoleID(ctx, roleID)
}

// ListRoles lists every staff role.
func (s *AdminService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.adminRepo.ListRoles(ctx)
}

// Create creates a new admin. PasswordHash must already be hashed.
func (s *AdminService) Create(ctx context.Context, admin *model.Admin) error {
	return s.adminRepo.Create(ctx, admin)
}
