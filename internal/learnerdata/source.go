// Package learnerdata provides the learner data sources the dashboard is built from.
package learnerdata

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// ErrProductNotFound is returned by GetProduct when the catalog has no such product.
var ErrProductNotFound = errors.New("product not found")

// Source is the read contract for learner data. GetLearnerByEmail returns
// (nil, nil) when no learner matches; every other failure is an error.
type Source interface {
	GetLearnerByEmail(ctx context.Context, email string) (*model.Learner, error)
	GetLearnerEnrollments(ctx context.Context, learnerID uuid.UUID) ([]model.Enrollment, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetLearnerUsage(ctx context.Context, learnerID uuid.UUID) ([]model.UsageRecord, error)
	GetLearnerDiscussions(ctx context.Context, learnerID uuid.UUID) ([]model.Discussion, error)
	GetLearnerQuizReports(ctx context.Context, learnerID uuid.UUID) ([]model.QuizReport, error)
	GetLearnerTransactions(ctx context.Context, learnerID uuid.UUID) ([]model.Transaction, error)
	GetLearnerProgressReports(ctx context.Context, learnerID uuid.UUID) ([]model.ProgressReport, error)
	GetLearnerCertificates(ctx context.Context, learnerID uuid.UUID) ([]model.Certificate, error)
}
