package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/model"
)

const (
	defaultRecommendationLimit = 5

	categoryWeight = 0.6
	tagWeight      = 0.3
	baseScore      = 0.1
)

// CatalogReader lists the products that can be recommended.
type CatalogReader interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// RecommendationService ranks catalog products for a learner.
type RecommendationService struct {
	catalog CatalogReader
	log     zerolog.Logger
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(catalog CatalogReader, log zerolog.Logger) *RecommendationService {
	return &RecommendationService{
		catalog: catalog,
		log:     log.With().Str("component", "recommendation_service").Logger(),
	}
}

// BuildLearnerProfile derives a learner's course history and interests.
// products holds the enrolled products; their categories and tags are ranked
// by frequency, ties alphabetically.
func (s *RecommendationService) BuildLearnerProfile(learner *model.Learner, enrollments []model.Enrollment, reports []model.ProgressReport, products []model.Product) model.LearnerProfile {
	profile := model.LearnerProfile{
		CompletedCourses:  []uuid.UUID{},
		InProgressCourses: []uuid.UUID{},
	}
	if learner != nil {
		profile.LearnerID = learner.ID
	}

	progress := 0
	for _, e := range enrollments {
		if e.Status == model.EnrollmentStatusCompleted {
			profile.CompletedCourses = append(profile.CompletedCourses, e.ProductID)
		} else {
			profile.InProgressCourses = append(profile.InProgressCourses, e.ProductID)
		}
		progress += e.Progress
	}
	if len(enrollments) > 0 {
		profile.AverageCompletion = float64(progress) / float64(len(enrollments))
	}

	for _, r := range reports {
		profile.TotalLearningTime += r.WatchedDuration
	}

	categories := map[string]int{}
	tags := map[string]int{}
	for _, p := range products {
		if p.Category != "" {
			categories[p.Category]++
		}
		for _, t := range p.Tags {
			tags[strings.ToLower(t)]++
		}
	}
	profile.PreferredCategories = rankByFrequency(categories)
	profile.PreferredTags = rankByFrequency(tags)

	return profile
}

// GenerateRecommendations scores published products the learner is not enrolled
// in and returns the best `limit` of them.
func (s *RecommendationService) GenerateRecommendations(ctx context.Context, profile model.LearnerProfile, limit int) ([]model.Recommendation, error) {
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	catalog, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	enrolled := make(map[uuid.UUID]bool, len(profile.CompletedCourses)+len(profile.InProgressCourses))
	for _, id := range profile.CompletedCourses {
		enrolled[id] = true
	}
	for _, id := range profile.InProgressCourses {
		enrolled[id] = true
	}

	recs := make([]model.Recommendation, 0, limit)

	// No history: fall back to catalog order.
	if len(enrolled) == 0 {
		for _, p := range catalog {
			if !p.IsPublished {
				continue
			}
			recs = append(recs, model.Recommendation{
				ProductID: p.ID,
				Product:   p,
				Score:     baseScore,
				Reason:    "Popular with learners",
				Type:      model.RecommendationPopular,
			})
			if len(recs) == limit {
				break
			}
		}
		return recs, nil
	}

	for _, p := range catalog {
		if !p.IsPublished || enrolled[p.ID] {
			continue
		}
		recs = append(recs, scoreProduct(p, profile))
	}

	slices.SortStableFunc(recs, func(a, b model.Recommendation) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Product.Title, b.Product.Title)
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}

	s.log.Debug().
		Str("learner_id", profile.LearnerID.String()).
		Int("candidates", len(catalog)).
		Int("returned", len(recs)).
		Msg("Recommendations generated")

	return recs, nil
}

func scoreProduct(p model.Product, profile model.LearnerProfile) model.Recommendation {
	categoryMatch := slices.Contains(profile.PreferredCategories, p.Category)

	var overlap []string
	for _, t := range p.Tags {
		if slices.Contains(profile.PreferredTags, strings.ToLower(t)) {
			overlap = append(overlap, t)
		}
	}

	score := baseScore
	if categoryMatch {
		score += categoryWeight
	}
	if len(p.Tags) > 0 {
		score += tagWeight * float64(len(overlap)) / float64(len(p.Tags))
	}

	rec := model.Recommendation{ProductID: p.ID, Product: p, Score: score}
	switch {
	case categoryMatch:
		rec.Type = model.RecommendationCategoryMatch
		rec.Reason = fmt.Sprintf("More %s courses like the ones you take", p.Category)
	case len(overlap) > 0:
		rec.Type = model.RecommendationTagMatch
		rec.Reason = "Matches your interest in " + strings.Join(overlap, ", ")
	default:
		rec.Type = model.RecommendationPopular
		rec.Reason = "Popular with learners"
	}
	return rec
}

func rankByFrequency(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return keys
}
