package model

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationType describes why a product was suggested.
type RecommendationType string

const (
	RecommendationCategoryMatch RecommendationType = "category_match"
	RecommendationTagMatch      RecommendationType = "tag_match"
	RecommendationPopular       RecommendationType = "popular"
)

// Recommendation is a ranked product suggestion for a learner.
type Recommendation struct {
	ProductID uuid.UUID          `json:"product_id"`
	Product   Product            `json:"product"`
	Score     float64            `json:"score"`
	Reason    string             `json:"reason"`
	Type      RecommendationType `json:"type"`
}

// LearnerProfile summarizes a learner's history for the recommendation engine.
type LearnerProfile struct {
	LearnerID           uuid.UUID   `json:"learner_id"`
	CompletedCourses    []uuid.UUID `json:"completed_courses"`
	InProgressCourses   []uuid.UUID `json:"in_progress_courses"`
	PreferredCategories []string    `json:"preferred_categories"`
	PreferredTags       []string    `json:"preferred_tags"`
	AverageCompletion   float64     `json:"average_completion"`
	TotalLearningTime   int         `json:"total_learning_time"`
}

// DashboardProduct joins a catalog product with the learner's enrollment state.
type DashboardProduct struct {
	Product    Product         `json:"product"`
	Enrollment Enrollment      `json:"enrollment"`
	Progress   *ProgressReport `json:"progress,omitempty"`
	IsEnrolled bool            `json:"is_enrolled"`
	CanResume  bool            `json:"can_resume"`
}

// DashboardSummary holds the roll-up statistics shown on the dashboard.
type DashboardSummary struct {
	TotalCourses          int `json:"total_courses"`
	CompletedCourses      int `json:"completed_courses"`
	InProgressCourses     int `json:"in_progress_courses"`
	TotalLearningTime     int `json:"total_learning_time"`
	AverageCompletionRate int `json:"average_completion_rate"`
	TotalCertificates     int `json:"total_certificates"`
}

// Dashboard is the aggregated learner view. It is rebuilt on every request.
type Dashboard struct {
	Learner         Learner            `json:"learner"`
	Products        []DashboardProduct `json:"products"`
	Summary         DashboardSummary   `json:"summary"`
	Recommendations []Recommendation   `json:"recommendations"`
	CurrentStreak   int                `json:"current_streak"`
	Discussions     []Discussion       `json:"discussions"`
	QuizReports     []QuizReport       `json:"quiz_reports"`
	Transactions    []Transaction      `json:"transactions"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
