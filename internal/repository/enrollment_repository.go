package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// EnrollmentRepository handles enrollment and progress report data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// ListByLearner retrieves all enrollments of a learner, oldest first.
func (r *EnrollmentRepository) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, learner_id, product_id, status, progress, enrolled_at, last_accessed_at, completed_at
		 FROM enrollments
		 WHERE learner_id = $1
		 ORDER BY enrolled_at ASC, id ASC`, learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := []model.Enrollment{}
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.LearnerID, &e.ProductID, &e.Status, &e.Progress,
			&e.EnrolledAt, &e.LastAccessedAt, &e.CompletedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// Create inserts a new enrollment. A second enrollment for the same
// (learner, product) pair returns ErrDuplicate.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	if e.Status == "" {
		e.Status = model.EnrollmentStatusActive
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (learner_id, product_id, status, progress, completed_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, enrolled_at`,
		e.LearnerID, e.ProductID, e.Status, e.Progress, e.CompletedAt,
	).Scan(&e.ID, &e.EnrolledAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListProgressByLearner retrieves every progress report of a learner.
func (r *EnrollmentRepository) ListProgressByLearner(ctx context.Context, learnerID uuid.UUID) ([]model.ProgressReport, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT learner_id, product_id, total_lessons, completed_lessons, total_duration,
		        watched_duration, progress_percentage, last_watched_lesson, completion_date
		 FROM progress_reports
		 WHERE learner_id = $1`, learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []model.ProgressReport{}
	for rows.Next() {
		var p model.ProgressReport
		if err := rows.Scan(&p.LearnerID, &p.ProductID, &p.TotalLessons, &p.CompletedLessons, &p.TotalDuration,
			&p.WatchedDuration, &p.ProgressPercentage, &p.LastWatchedLesson, &p.CompletionDate); err != nil {
			return nil, err
		}
		reports = append(reports, p)
	}
	return reports, rows.Err()
}

// UpsertProgress inserts or replaces a learner's progress report for a product.
func (r *EnrollmentRepository) UpsertProgress(ctx context.Context, p *model.ProgressReport) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO progress_reports (learner_id, product_id, total_lessons, completed_lessons, total_duration,
		                               watched_duration, progress_percentage, last_watched_lesson, completion_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (learner_id, product_id) DO UPDATE SET
		     total_lessons = EXCLUDED.total_lessons,
		     completed_lessons = EXCLUDED.completed_lessons,
		     total_duration = EXCLUDED.total_duration,
		     watched_duration = EXCLUDED.watched_duration,
		     progress_percentage = EXCLUDED.progress_percentage,
		     last_watched_lesson = EXCLUDED.last_watched_lesson,
		     completion_date = EXCLUDED.completion_date`,
		p.LearnerID, p.ProductID, p.TotalLessons, p.CompletedLessons, p.TotalDuration,
		p.WatchedDuration, p.ProgressPercentage, p.LastWatchedLesson, p.CompletionDate,
	)
	return err
}
