package model

import (
	"time"

	"github.com/google/uuid"
)

// LessonType enumerates the kinds of syllabus entries.
type LessonType string

const (
	LessonTypeVideo      LessonType = "video"
	LessonTypeText       LessonType = "text"
	LessonTypeQuiz       LessonType = "quiz"
	LessonTypeAssignment LessonType = "assignment"
)

// Lesson is a single syllabus entry. Order defines its position.
type Lesson struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Type        LessonType `json:"type"`
	Duration    int        `json:"duration"` // minutes
	Order       int        `json:"order"`
	IsLocked    bool       `json:"is_locked"`
	IsCompleted bool       `json:"is_completed"`
}

// Product is a course sold in the catalog.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Instructor  string    `json:"instructor"`
	Syllabus    []Lesson  `json:"syllabus"`
	Duration    int       `json:"duration"` // minutes
	Difficulty  string    `json:"difficulty"`
	Language    string    `json:"language"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
