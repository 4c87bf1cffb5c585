package worker

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stemsi/learnhub-backend/internal/model"
)

func TestFoldUsage(t *testing.T) {
	ana, budi := uuid.New(), uuid.New()
	course := uuid.New()
	day := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	events := []model.ActivityEvent{
		{LearnerID: ana, ProductID: course, Type: model.ActivityLessonWatched, Minutes: 20, OccurredAt: day},
		{LearnerID: ana, ProductID: course, Type: model.ActivityLessonCompleted, Minutes: 5, OccurredAt: day.Add(time.Hour)},
		{LearnerID: ana, ProductID: course, Type: model.ActivityQuizTaken, Minutes: 10, OccurredAt: day.Add(-24 * time.Hour)},
		{LearnerID: budi, ProductID: course, Type: model.ActivityAssignmentSubmitted, Minutes: 30, OccurredAt: day},
	}

	got := foldUsage(events, time.UTC)
	require.Len(t, got, 3)

	assert.Equal(t, usageDelta{LearnerID: ana, UsageRecord: model.UsageRecord{
		Date: "2024-01-15", Duration: 25, LessonsCompleted: 1,
	}}, got[0])
	assert.Equal(t, usageDelta{LearnerID: ana, UsageRecord: model.UsageRecord{
		Date: "2024-01-14", Duration: 10, QuizzesTaken: 1,
	}}, got[1])
	assert.Equal(t, usageDelta{LearnerID: budi, UsageRecord: model.UsageRecord{
		Date: "2024-01-15", Duration: 30, AssignmentsSubmitted: 1,
	}}, got[2])
}

func TestFoldUsageUsesLocationCalendar(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	late := time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)

	got := foldUsage([]model.ActivityEvent{{LearnerID: uuid.New(), Minutes: 1, OccurredAt: late}}, jakarta)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-16", got[0].Date)
}

func TestFoldProgress(t *testing.T) {
	ana := uuid.New()
	goCourse, sqlCourse := uuid.New(), uuid.New()
	t0 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	events := []model.ActivityEvent{
		{LearnerID: ana, ProductID: goCourse, LessonID: "l-2", Type: model.ActivityLessonCompleted, Minutes: 12, OccurredAt: t0.Add(time.Minute)},
		{LearnerID: ana, ProductID: goCourse, LessonID: "l-1", Type: model.ActivityLessonCompleted, Minutes: 8, OccurredAt: t0},
		{LearnerID: ana, ProductID: goCourse, Type: model.ActivityQuizTaken, Minutes: 4, OccurredAt: t0.Add(2 * time.Minute)},
		{LearnerID: ana, ProductID: sqlCourse, LessonID: "s-1", Type: model.ActivityLessonWatched, Minutes: 3, OccurredAt: t0},
	}

	got := foldProgress(events)
	require.Len(t, got, 2)

	assert.Equal(t, goCourse, got[0].ProductID)
	assert.Equal(t, 2, got[0].LessonsCompleted)
	assert.Equal(t, 24, got[0].Minutes)
	assert.Equal(t, "l-2", got[0].LastLesson)
	assert.Equal(t, t0.Add(2*time.Minute), got[0].LastAt)

	assert.Equal(t, sqlCourse, got[1].ProductID)
	assert.Zero(t, got[1].LessonsCompleted)
	assert.Equal(t, "s-1", got[1].LastLesson)
}

func TestGroupByLearner(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	groups := groupByLearner([]model.ActivityEvent{{LearnerID: a}, {LearnerID: b}, {LearnerID: a}})
	assert.Len(t, groups[a], 2)
	assert.Len(t, groups[b], 1)
}

func TestAdvanceEnrollment(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	earlier := at.Add(-72 * time.Hour)

	tests := []struct {
		name          string
		enrollment    model.Enrollment
		report        *reportState
		wantStatus    model.EnrollmentStatus
		wantProgress  int
		wantCompleted *time.Time
	}{
		{
			name:          "completed course without lesson totals stays completed",
			enrollment:    model.Enrollment{Status: model.EnrollmentStatusCompleted, Progress: 100, CompletedAt: &earlier},
			report:        &reportState{TotalLessons: 0, CompletedLessons: 0},
			wantStatus:    model.EnrollmentStatusCompleted,
			wantProgress:  100,
			wantCompleted: &earlier,
		},
		{
			name:          "completed course with a lagging report stays completed",
			enrollment:    model.Enrollment{Status: model.EnrollmentStatusCompleted, Progress: 100, CompletedAt: &earlier},
			report:        &reportState{TotalLessons: 4, CompletedLessons: 3},
			wantStatus:    model.EnrollmentStatusCompleted,
			wantProgress:  100,
			wantCompleted: &earlier,
		},
		{
			name:         "one lesson short is not completion",
			enrollment:   model.Enrollment{Status: model.EnrollmentStatusActive, Progress: 90},
			report:       &reportState{TotalLessons: 200, CompletedLessons: 199},
			wantStatus:   model.EnrollmentStatusActive,
			wantProgress: 99,
		},
		{
			name:         "progress never decreases",
			enrollment:   model.Enrollment{Status: model.EnrollmentStatusActive, Progress: 60},
			report:       &reportState{TotalLessons: 4, CompletedLessons: 1},
			wantStatus:   model.EnrollmentStatusActive,
			wantProgress: 60,
		},
		{
			name:          "last lesson completes the course",
			enrollment:    model.Enrollment{Status: model.EnrollmentStatusActive, Progress: 75},
			report:        &reportState{TotalLessons: 4, CompletedLessons: 4},
			wantStatus:    model.EnrollmentStatusCompleted,
			wantProgress:  100,
			wantCompleted: &at,
		},
		{
			name:         "cancelled course is left alone",
			enrollment:   model.Enrollment{Status: model.EnrollmentStatusCancelled, Progress: 20},
			report:       &reportState{TotalLessons: 4, CompletedLessons: 4},
			wantStatus:   model.EnrollmentStatusCancelled,
			wantProgress: 20,
		},
		{
			name:         "paused course still advances",
			enrollment:   model.Enrollment{Status: model.EnrollmentStatusPaused, Progress: 10},
			report:       &reportState{TotalLessons: 4, CompletedLessons: 2},
			wantStatus:   model.EnrollmentStatusPaused,
			wantProgress: 50,
		},
		{
			name:         "no report only touches access time",
			enrollment:   model.Enrollment{Status: model.EnrollmentStatusActive, Progress: 30},
			wantStatus:   model.EnrollmentStatusActive,
			wantProgress: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := advanceEnrollment(tt.enrollment, tt.report, at)

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantProgress, got.Progress)
			assert.Equal(t, tt.wantCompleted, got.CompletedAt)
			require.NotNil(t, got.LastAccessedAt)
			assert.Equal(t, at, *got.LastAccessedAt)

			// Mirrors the enrollments CHECK constraint.
			if got.Status == model.EnrollmentStatusCompleted {
				assert.Equal(t, 100, got.Progress)
				assert.NotNil(t, got.CompletedAt)
			}
		})
	}
}
