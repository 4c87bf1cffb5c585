package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus enumerates enrollment states.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusPaused    EnrollmentStatus = "paused"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

// Enrollment links a learner to a product. A completed enrollment always has
// Progress 100 and a CompletedAt timestamp.
type Enrollment struct {
	ID             uuid.UUID        `json:"id"`
	LearnerID      uuid.UUID        `json:"learner_id"`
	ProductID      uuid.UUID        `json:"product_id"`
	Status         EnrollmentStatus `json:"status"`
	Progress       int              `json:"progress"`
	EnrolledAt     time.Time        `json:"enrolled_at"`
	LastAccessedAt *time.Time       `json:"last_accessed_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

// ProgressReport is the per-course lesson and watch-time rollup for a learner.
type ProgressReport struct {
	LearnerID          uuid.UUID  `json:"learner_id"`
	ProductID          uuid.UUID  `json:"product_id"`
	TotalLessons       int        `json:"total_lessons"`
	CompletedLessons   int        `json:"completed_lessons"`
	TotalDuration      int        `json:"total_duration"`   // minutes
	WatchedDuration    int        `json:"watched_duration"` // minutes
	ProgressPercentage float64    `json:"progress_percentage"`
	LastWatchedLesson  *string    `json:"last_watched_lesson,omitempty"`
	CompletionDate     *time.Time `json:"completion_date,omitempty"`
}

// UsageDateLayout is the calendar date format of UsageRecord.Date.
const UsageDateLayout = "2006-01-02"

// UsageRecord holds one calendar day of learning activity.
// Duration is in minutes; zero means the learner was not active that day.
type UsageRecord struct {
	Date                 string `json:"date"`
	Duration             int    `json:"duration"`
	LessonsCompleted     int    `json:"lessons_completed"`
	QuizzesTaken         int    `json:"quizzes_taken"`
	AssignmentsSubmitted int    `json:"assignments_submitted"`
}
