package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/learnerdata"
	"github.com/stemsi/learnhub-backend/internal/model"
	"golang.org/x/sync/errgroup"
)

// ErrDashboardBuild is the single error kind callers see when aggregation fails.
// Clients match on this exact text, capital letter included.
var ErrDashboardBuild = errors.New("Failed to build dashboard data") //nolint:staticcheck // ST1005: fixed client-facing message

// DashboardError wraps the collaborator failure that aborted an aggregation.
type DashboardError struct {
	Cause error
}

func (e *DashboardError) Error() string { return ErrDashboardBuild.Error() }

func (e *DashboardError) Unwrap() error { return e.Cause }

func (e *DashboardError) Is(target error) bool { return target == ErrDashboardBuild }

// Recommender builds learner profiles and ranks catalog products for them.
type Recommender interface {
	BuildLearnerProfile(learner *model.Learner, enrollments []model.Enrollment, reports []model.ProgressReport, products []model.Product) model.LearnerProfile
	GenerateRecommendations(ctx context.Context, profile model.LearnerProfile, limit int) ([]model.Recommendation, error)
}

// DashboardOption customizes a DashboardService.
type DashboardOption func(*DashboardService)

// WithClock overrides the time source used for the streak and GeneratedAt.
func WithClock(now func() time.Time) DashboardOption {
	return func(s *DashboardService) { s.now = now }
}

// WithStreakLocation sets the time zone whose calendar days the streak counts.
func WithStreakLocation(loc *time.Location) DashboardOption {
	return func(s *DashboardService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRecommendationLimit caps the number of recommendations per dashboard.
func WithRecommendationLimit(n int) DashboardOption {
	return func(s *DashboardService) {
		if n > 0 {
			s.recLimit = n
		}
	}
}

// DashboardService aggregates learner data into a Dashboard. Nothing is
// cached; every call reads fresh data from the source.
type DashboardService struct {
	src      learnerdata.Source
	recs     Recommender
	log      zerolog.Logger
	now      func() time.Time
	loc      *time.Location
	recLimit int
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(src learnerdata.Source, recs Recommender, log zerolog.Logger, opts ...DashboardOption) *DashboardService {
	s := &DashboardService{
		src:      src,
		recs:     recs,
		log:      log.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
		loc:      time.UTC,
		recLimit: defaultRecommendationLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDashboardByEmail builds the dashboard for the learner with the given email.
// It returns (nil, nil) when no learner matches and a *DashboardError when any
// fetch or the recommendation engine fails.
func (s *DashboardService) GetDashboardByEmail(ctx context.Context, email string) (*model.Dashboard, error) {
	learner, err := s.src.GetLearnerByEmail(ctx, email)
	if err != nil {
		return nil, s.fail(err, email, uuid.Nil)
	}
	if learner == nil {
		return nil, nil
	}

	var (
		enrollments  []model.Enrollment
		products     []model.Product
		usage        []model.UsageRecord
		discussions  []model.Discussion
		quizReports  []model.QuizReport
		transactions []model.Transaction
		reports      []model.ProgressReport
		certificates []model.Certificate
	)

	g, gctx := errgroup.WithContext(ctx)
	id := learner.ID

	g.Go(func() error {
		var err error
		if enrollments, err = s.src.GetLearnerEnrollments(gctx, id); err != nil {
			return err
		}
		products = make([]model.Product, len(enrollments))
		for i, e := range enrollments {
			i, e := i, e
			g.Go(func() error {
				p, err := s.src.GetProduct(gctx, e.ProductID)
				if err != nil {
					return err
				}
				products[i] = *p
				return nil
			})
		}
		return nil
	})
	g.Go(func() (err error) { usage, err = s.src.GetLearnerUsage(gctx, id); return })
	g.Go(func() (err error) { discussions, err = s.src.GetLearnerDiscussions(gctx, id); return })
	g.Go(func() (err error) { quizReports, err = s.src.GetLearnerQuizReports(gctx, id); return })
	g.Go(func() (err error) { transactions, err = s.src.GetLearnerTransactions(gctx, id); return })
	g.Go(func() (err error) { reports, err = s.src.GetLearnerProgressReports(gctx, id); return })
	g.Go(func() (err error) { certificates, err = s.src.GetLearnerCertificates(gctx, id); return })

	if err := g.Wait(); err != nil {
		return nil, s.fail(err, email, id)
	}

	profile := s.recs.BuildLearnerProfile(learner, enrollments, reports, products)
	recommendations, err := s.recs.GenerateRecommendations(ctx, profile, s.recLimit)
	if err != nil {
		return nil, s.fail(err, email, id)
	}

	now := s.now()
	return &model.Dashboard{
		Learner:         *learner,
		Products:        JoinDashboardProducts(enrollments, products, reports),
		Summary:         BuildDashboardSummary(enrollments, reports, usage, certificates),
		Recommendations: orEmpty(recommendations),
		CurrentStreak:   CalculateStreakDays(usage, now.In(s.loc)),
		Discussions:     orEmpty(discussions),
		QuizReports:     orEmpty(quizReports),
		Transactions:    orEmpty(transactions),
		GeneratedAt:     now.UTC(),
	}, nil
}

func (s *DashboardService) fail(cause error, email string, learnerID uuid.UUID) error {
	ev := s.log.Error().Err(cause).Str("email", email)
	if learnerID != uuid.Nil {
		ev = ev.Str("learner_id", learnerID.String())
	}
	ev.Msg("Dashboard aggregation failed")
	return &DashboardError{Cause: cause}
}

// JoinDashboardProducts pairs each enrollment, in order, with its product
// (same index) and the progress report for that product, if any.
func JoinDashboardProducts(enrollments []model.Enrollment, products []model.Product, reports []model.ProgressReport) []model.DashboardProduct {
	byProduct := make(map[uuid.UUID]model.ProgressReport, len(reports))
	for _, r := range reports {
		byProduct[r.ProductID] = r
	}

	out := make([]model.DashboardProduct, 0, len(enrollments))
	for i, e := range enrollments {
		dp := model.DashboardProduct{
			Enrollment: e,
			IsEnrolled: true,
			CanResume:  e.Status == model.EnrollmentStatusActive,
		}
		if i < len(products) {
			dp.Product = products[i]
		}
		if r, ok := byProduct[e.ProductID]; ok {
			dp.Progress = &r
		}
		out = append(out, dp)
	}
	return out
}

// BuildDashboardSummary computes the roll-up statistics. Learning time comes
// from progress reports only; the usage log is not part of it.
func BuildDashboardSummary(enrollments []model.Enrollment, reports []model.ProgressReport, _ []model.UsageRecord, certificates []model.Certificate) model.DashboardSummary {
	sum := model.DashboardSummary{
		TotalCourses:      len(enrollments),
		TotalCertificates: len(certificates),
	}

	progress := 0
	for _, e := range enrollments {
		if e.Status == model.EnrollmentStatusCompleted {
			sum.CompletedCourses++
		}
		progress += e.Progress
	}
	sum.InProgressCourses = sum.TotalCourses - sum.CompletedCourses

	for _, r := range reports {
		sum.TotalLearningTime += r.WatchedDuration
	}

	if len(enrollments) > 0 {
		sum.AverageCompletionRate = int(math.Round(float64(progress) / float64(len(enrollments))))
	}
	return sum
}

// CalculateStreakDays counts consecutive active days ending on today's
// calendar date, in today's location. A day is active when it has a usage
// record with a positive duration; the first inactive day ends the streak.
func CalculateStreakDays(usage []model.UsageRecord, today time.Time) int {
	if len(usage) == 0 {
		return 0
	}

	active := make(map[string]bool, len(usage))
	for _, u := range usage {
		active[u.Date] = active[u.Date] || u.Duration > 0
	}

	y, m, d := today.Date()
	streak := 0
	for {
		// Noon avoids DST transitions shifting the calendar date.
		day := time.Date(y, m, d-streak, 12, 0, 0, 0, today.Location())
		if !active[day.Format(model.UsageDateLayout)] {
			return streak
		}
		streak++
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
