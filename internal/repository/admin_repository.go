package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// AdminRepository handles CMS staff accounts and their role permissions.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) getOne(ctx context.Context, where string, arg any) (*model.Admin, error) {
	a := &model.Admin{}
	err := r.pool.QueryRow(ctx,
		`SELECT a.id, a.email, a.name, a.password_hash, a.role_id, r.name, a.created_at, a.updated_at
		 FROM admins a JOIN roles r ON a.role_id = r.id
		 WHERE `+where, arg,
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.RoleID, &a.RoleName, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an admin by ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return r.getOne(ctx, "a.id = $1", id)
}

// GetByEmail retrieves an admin by their unique email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return r.getOne(ctx, "a.email = $1", email)
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admins (email, name, password_hash, role_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.Name, a.PasswordHash, a.RoleID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetPermissionsByRoleID retrieves all permission codes for a given role.
func (r *AdminRepository) GetPermissionsByRoleID(ctx context.Context, roleID int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.code
		 FROM permissions p
		 JOIN role_permissions rp ON p.id = rp.permission_id
		 WHERE rp.role_id = $1
		 ORDER BY p.code`, roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	permissions := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		permissions = append(permissions, code)
	}
	return permissions, rows.Err()
}

// ListRoles retrieves all roles.
func (r *AdminRepository) ListRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []model.Role{}
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
