package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType enumerates learning events reported by the player.
type ActivityType string

const (
	ActivityLessonWatched       ActivityType = "lesson_watched"
	ActivityLessonCompleted     ActivityType = "lesson_completed"
	ActivityQuizTaken           ActivityType = "quiz_taken"
	ActivityAssignmentSubmitted ActivityType = "assignment_submitted"
)

// ActivityEvent is a single learning event queued for persistence.
type ActivityEvent struct {
	LearnerID  uuid.UUID    `json:"learner_id"`
	ProductID  uuid.UUID    `json:"product_id"`
	LessonID   string       `json:"lesson_id,omitempty"`
	Type       ActivityType `json:"type"`
	Minutes    int          `json:"minutes"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// RecordActivityRequest is the payload for reporting a learning event.
type RecordActivityRequest struct {
	ProductID string       `json:"product_id" binding:"required,uuid"`
	LessonID  string       `json:"lesson_id" binding:"omitempty,max=64"`
	Type      ActivityType `json:"type" binding:"required,oneof=lesson_watched lesson_completed quiz_taken assignment_submitted"`
	Minutes   int          `json:"minutes" binding:"min=0,max=1440"`
}

// DashboardLookupRequest is the query for looking up a learner's dashboard by email.
type DashboardLookupRequest struct {
	Email string `form:"email" binding:"required,email,max=255"`
}
