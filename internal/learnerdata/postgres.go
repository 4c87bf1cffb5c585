package learnerdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/learnhub-backend/internal/model"
	"github.com/stemsi/learnhub-backend/internal/repository"
)

// PostgresSource reads learner data from the local LMS mirror database.
type PostgresSource struct {
	learners    *repository.LearnerRepository
	products    *repository.ProductRepository
	enrollments *repository.EnrollmentRepository
	usage       *repository.UsageRepository
	activity    *repository.ActivityRepository
}

// NewPostgresSource creates a PostgresSource over the given pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{
		learners:    repository.NewLearnerRepository(pool),
		products:    repository.NewProductRepository(pool),
		enrollments: repository.NewEnrollmentRepository(pool),
		usage:       repository.NewUsageRepository(pool),
		activity:    repository.NewActivityRepository(pool),
	}
}

func (s *PostgresSource) GetLearnerByEmail(ctx context.Context, email string) (*model.Learner, error) {
	l, err := s.learners.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get learner by email: %w", err)
	}
	return l, nil
}

func (s *PostgresSource) GetLearnerEnrollments(ctx context.Context, learnerID uuid.UUID) ([]model.Enrollment, error) {
	enrollments, err := s.enrollments.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *PostgresSource) GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *PostgresSource) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.products.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *PostgresSource) GetLearnerUsage(ctx context.Context, learnerID uuid.UUID) ([]model.UsageRecord, error) {
	usage, err := s.usage.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	return usage, nil
}

func (s *PostgresSource) GetLearnerDiscussions(ctx context.Context, learnerID uuid.UUID) ([]model.Discussion, error) {
	d, err := s.activity.ListDiscussions(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	return d, nil
}

func (s *PostgresSource) GetLearnerQuizReports(ctx context.Context, learnerID uuid.UUID) ([]model.QuizReport, error) {
	q, err := s.activity.ListQuizReports(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list quiz reports: %w", err)
	}
	return q, nil
}

func (s *PostgresSource) GetLearnerTransactions(ctx context.Context, learnerID uuid.UUID) ([]model.Transaction, error) {
	t, err := s.activity.ListTransactions(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return t, nil
}

func (s *PostgresSource) GetLearnerProgressReports(ctx context.Context, learnerID uuid.UUID) ([]model.ProgressReport, error) {
	p, err := s.enrollments.ListProgressByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list progress reports: %w", err)
	}
	return p, nil
}

func (s *PostgresSource) GetLearnerCertificates(ctx context.Context, learnerID uuid.UUID) ([]model.Certificate, error) {
	c, err := s.activity.ListCertificates(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return c, nil
}
