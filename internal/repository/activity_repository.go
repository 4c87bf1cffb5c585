package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// recentLimit caps the feed-style lists (discussions, quizzes, transactions).
const recentLimit = 20

// ActivityRepository reads learner-generated records: discussions, quiz
// reports, transactions and certificates.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// ListDiscussions retrieves the most recent discussions opened by a learner.
func (r *ActivityRepository) ListDiscussions(ctx context.Context, learnerID uuid.UUID) ([]model.Discussion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, learner_id, product_id, title, reply_count, created_at
		 FROM discussions WHERE learner_id = $1
		 ORDER BY created_at DESC LIMIT $2`, learnerID, recentLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discussions := []model.Discussion{}
	for rows.Next() {
		var d model.Discussion
		if err := rows.Scan(&d.ID, &d.LearnerID, &d.ProductID, &d.Title, &d.ReplyCount, &d.CreatedAt); err != nil {
			return nil, err
		}
		discussions = append(discussions, d)
	}
	return discussions, rows.Err()
}

// ListQuizReports retrieves the most recent quiz attempts of a learner.
func (r *ActivityRepository) ListQuizReports(ctx context.Context, learnerID uuid.UUID) ([]model.QuizReport, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, learner_id, product_id, quiz_id, score, max_score, passed, taken_at
		 FROM quiz_reports WHERE learner_id = $1
		 ORDER BY taken_at DESC LIMIT $2`, learnerID, recentLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []model.QuizReport{}
	for rows.Next() {
		var q model.QuizReport
		if err := rows.Scan(&q.ID, &q.LearnerID, &q.ProductID, &q.QuizID, &q.Score, &q.MaxScore, &q.Passed, &q.TakenAt); err != nil {
			return nil, err
		}
		reports = append(reports, q)
	}
	return reports, rows.Err()
}

// ListTransactions retrieves the most recent purchases of a learner.
func (r *ActivityRepository) ListTransactions(ctx context.Context, learnerID uuid.UUID) ([]model.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, learner_id, product_id, amount::float8, currency, status, created_at
		 FROM transactions WHERE learner_id = $1
		 ORDER BY created_at DESC LIMIT $2`, learnerID, recentLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.LearnerID, &t.ProductID, &t.Amount, &t.Currency, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// ListCertificates retrieves every certificate issued to a learner.
func (r *ActivityRepository) ListCertificates(ctx context.Context, learnerID uuid.UUID) ([]model.Certificate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, learner_id, product_id, issued_at
		 FROM certificates WHERE learner_id = $1
		 ORDER BY issued_at ASC`, learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	certs := []model.Certificate{}
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ID, &c.LearnerID, &c.ProductID, &c.IssuedAt); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}
