package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/learnhub-backend/internal/learnerdata"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// fakeSource is an in-memory learnerdata.Source that records calls.
type fakeSource struct {
	mu    sync.Mutex
	calls []string

	learner      *model.Learner
	enrollments  []model.Enrollment
	products     map[uuid.UUID]model.Product
	catalog      []model.Product
	usage        []model.UsageRecord
	discussions  []model.Discussion
	quizReports  []model.QuizReport
	transactions []model.Transaction
	reports      []model.ProgressReport
	certificates []model.Certificate

	// failOn makes the named method return err.
	failOn string
	err    error
}

var _ learnerdata.Source = (*fakeSource)(nil)

func (f *fakeSource) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return f.err
	}
	return nil
}

func (f *fakeSource) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) GetLearnerByEmail(_ context.Context, email string) (*model.Learner, error) {
	if err := f.record("GetLearnerByEmail"); err != nil {
		return nil, err
	}
	if f.learner == nil || f.learner.Email != email {
		return nil, nil
	}
	l := *f.learner
	return &l, nil
}

func (f *fakeSource) GetLearnerEnrollments(context.Context, uuid.UUID) ([]model.Enrollment, error) {
	return f.enrollments, f.record("GetLearnerEnrollments")
}

func (f *fakeSource) GetProduct(_ context.Context, id uuid.UUID) (*model.Product, error) {
	if err := f.record("GetProduct"); err != nil {
		return nil, err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, learnerdata.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeSource) ListProducts(context.Context) ([]model.Product, error) {
	return f.catalog, f.record("ListProducts")
}

func (f *fakeSource) GetLearnerUsage(context.Context, uuid.UUID) ([]model.UsageRecord, error) {
	return f.usage, f.record("GetLearnerUsage")
}

func (f *fakeSource) GetLearnerDiscussions(context.Context, uuid.UUID) ([]model.Discussion, error) {
	return f.discussions, f.record("GetLearnerDiscussions")
}

func (f *fakeSource) GetLearnerQuizReports(context.Context, uuid.UUID) ([]model.QuizReport, error) {
	return f.quizReports, f.record("GetLearnerQuizReports")
}

func (f *fakeSource) GetLearnerTransactions(context.Context, uuid.UUID) ([]model.Transaction, error) {
	return f.transactions, f.record("GetLearnerTransactions")
}

func (f *fakeSource) GetLearnerProgressReports(context.Context, uuid.UUID) ([]model.ProgressReport, error) {
	return f.reports, f.record("GetLearnerProgressReports")
}

func (f *fakeSource) GetLearnerCertificates(context.Context, uuid.UUID) ([]model.Certificate, error) {
	return f.certificates, f.record("GetLearnerCertificates")
}
