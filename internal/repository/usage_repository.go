package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// UsageRepository handles the daily usage log.
type UsageRepository struct {
	pool *pgxpool.Pool
}

// NewUsageRepository creates a new UsageRepository.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

// ListByLearner retrieves the usage log of a learner, most recent day first.
func (r *UsageRepository) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]model.UsageRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(usage_date, 'YYYY-MM-DD'), duration, lessons_completed, quizzes_taken, assignments_submitted
		 FROM usage_records
		 WHERE learner_id = $1
		 ORDER BY usage_date DESC`, learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := []model.UsageRecord{}
	for rows.Next() {
		var u model.UsageRecord
		if err := rows.Scan(&u.Date, &u.Duration, &u.LessonsCompleted, &u.QuizzesTaken, &u.AssignmentsSubmitted); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// Upsert writes a single day of usage, replacing any existing record for that day.
func (r *UsageRepository) Upsert(ctx context.Context, learnerID uuid.UUID, u model.UsageRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO usage_records (learner_id, usage_date, duration, lessons_completed, quizzes_taken, assignments_submitted)
		 VALUES ($1, $2::date, $3, $4, $5, $6)
		 ON CONFLICT (learner_id, usage_date) DO UPDATE SET
		     duration = EXCLUDED.duration,
		     lessons_completed = EXCLUDED.lessons_completed,
		     quizzes_taken = EXCLUDED.quizzes_taken,
		     assignments_submitted = EXCLUDED.assignments_submitted`,
		learnerID, u.Date, u.Duration, u.LessonsCompleted, u.QuizzesTaken, u.AssignmentsSubmitted,
	)
	return err
}
