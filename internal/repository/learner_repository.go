package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// LearnerRepository handles learner data access.
type LearnerRepository struct {
	pool *pgxpool.Pool
}

// NewLearnerRepository creates a new LearnerRepository.
func NewLearnerRepository(pool *pgxpool.Pool) *LearnerRepository {
	return &LearnerRepository{pool: pool}
}

const learnerColumns = `id, email, name, phone, created_at, updated_at`

func scanLearner(row pgx.Row) (*model.Learner, error) {
	l := &model.Learner{}
	if err := row.Scan(&l.ID, &l.Email, &l.Name, &l.Phone, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

// GetByEmail retrieves a learner by email. Returns (nil, nil) when no learner matches.
func (r *LearnerRepository) GetByEmail(ctx context.Context, email string) (*model.Learner, error) {
	l, err := scanLearner(r.pool.QueryRow(ctx,
		`SELECT `+learnerColumns+` FROM learners WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

// Create inserts a new learner.
func (r *LearnerRepository) Create(ctx context.Context, l *model.Learner) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO learners (email, name, phone)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		l.Email, l.Name, l.Phone,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
