package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/database"
	"github.com/stemsi/learnhub-backend/internal/logger"
	"github.com/stemsi/learnhub-backend/internal/model"
	"github.com/stemsi/learnhub-backend/internal/repository"
	"github.com/stemsi/learnhub-backend/internal/service"
)

// devLearnerEmail receives the printed dev token.
const devLearnerEmail = "learner1@learnhub.dev"

var catalog = []model.Product{
	{Title: "Go for Backend Engineers", Category: "programming", Tags: []string{"go", "backend", "concurrency"}, Difficulty: "intermediate", Duration: 540},
	{Title: "PostgreSQL in Practice", Category: "databases", Tags: []string{"sql", "postgres", "backend"}, Difficulty: "intermediate", Duration: 420},
	{Title: "Redis Patterns", Category: "databases", Tags: []string{"redis", "caching"}, Difficulty: "beginner", Duration: 180},
	{Title: "Intro to Python", Category: "programming", Tags: []string{"python", "beginner"}, Difficulty: "beginner", Duration: 300},
	{Title: "Kubernetes Basics", Category: "devops", Tags: []string{"kubernetes", "containers"}, Difficulty: "beginner", Duration: 360},
	{Title: "Observability with OpenTelemetry", Category: "devops", Tags: []string{"tracing", "metrics"}, Difficulty: "advanced", Duration: 240},
	{Title: "UI Design Fundamentals", Category: "design", Tags: []string{"ui", "figma"}, Difficulty: "beginner", Duration: 200},
	{Title: "Unreleased Draft Course", Category: "programming", Tags: []string{"go"}, Difficulty: "advanced", Duration: 60},
}

var names = []string{
	"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
	"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	learnerRepo := repository.NewLearnerRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)
	authService := service.NewAuthService(cfg)

	// ─── Catalog ───────────────────────────────────────────────────────
	fmt.Println("=== Seeding catalog ===")
	products := make([]model.Product, 0, len(catalog))
	for i, p := range catalog {
		p.Description = fmt.Sprintf("%s: a hands-on course.", p.Title)
		p.Price = float64(19 + 10*i)
		p.Currency = "USD"
		p.Instructor = "LearnHub Staff"
		p.Language = "en"
		p.IsPublished = i < len(catalog)-1
		p.Syllabus = syllabus(p.Duration)
		if err := productRepo.Create(ctx, &p); err != nil {
			log.Fatal().Err(err).Str("title", p.Title).Msg("Failed to create product")
		}
		products = append(products, p)
	}
	fmt.Printf("Created %d products\n", len(products))

	// ─── Learners ──────────────────────────────────────────────────────
	fmt.Printf("=== Seeding %d learners ===\n", len(names))
	today := time.Now().In(cfg.StreakLocation)
	successCount := 0
	var devLearner *model.Learner

	for i, name := range names {
		l := &model.Learner{
			Email: fmt.Sprintf("learner%d@learnhub.dev", i+1),
			Name:  name,
		}
		if err := learnerRepo.Create(ctx, l); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				fmt.Printf("Skipping %s: already exists\n", l.Email)
				continue
			}
			fmt.Printf("Error creating learner %s: %v\n", l.Email, err)
			continue
		}
		if l.Email == devLearnerEmail {
			devLearner = l
		}

		if err := seedLearning(ctx, enrollmentRepo, usageRepo, l, products, i, today); err != nil {
			fmt.Printf("Error seeding activity for %s: %v\n", l.Email, err)
			continue
		}
		successCount++
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d learners.\n", successCount, len(names))

	if devLearner == nil {
		return
	}
	token, err := authService.GenerateLearnerToken(devLearner.ID, devLearner.Email)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign dev token")
	}
	fmt.Printf("\nDev learner: %s\nBearer token: %s\n", devLearner.Email, token)
}

// seedLearning gives learner n a rotating set of enrollments, progress and a run of usage days.
func seedLearning(ctx context.Context, enrollments *repository.EnrollmentRepository, usage *repository.UsageRepository,
	l *model.Learner, products []model.Product, n int, today time.Time) error {
	// Skip the unpublished draft at the end.
	published := products[:len(products)-1]

	for k := 0; k < 3; k++ {
		p := published[(n+k)%len(published)]
		e := &model.Enrollment{LearnerID: l.ID, ProductID: p.ID}

		progress := (n*17 + k*31) % 100
		switch {
		case k == 0 && n%3 == 0:
			now := time.Now()
			e.Status = model.EnrollmentStatusCompleted
			e.CompletedAt = &now
			progress = 100
		case k == 2 && n%4 == 0:
			e.Status = model.EnrollmentStatusPaused
		}
		e.Progress = progress

		if err := enrollments.Create(ctx, e); err != nil {
			return err
		}

		total := len(p.Syllabus)
		done := total * progress / 100
		report := &model.ProgressReport{
			LearnerID:          l.ID,
			ProductID:          p.ID,
			TotalLessons:       total,
			CompletedLessons:   done,
			TotalDuration:      p.Duration,
			WatchedDuration:    p.Duration * progress / 100,
			ProgressPercentage: float64(progress),
			CompletionDate:     e.CompletedAt,
		}
		if done > 0 {
			lesson := p.Syllabus[done-1].ID
			report.LastWatchedLesson = &lesson
		}
		if err := enrollments.UpsertProgress(ctx, report); err != nil {
			return err
		}
	}

	// Active for the last n%7+1 days, then a gap, then a few older days.
	streak := n%7 + 1
	for d := 0; d < streak+5; d++ {
		if d == streak {
			continue
		}
		rec := model.UsageRecord{
			Date:             time.Date(today.Year(), today.Month(), today.Day()-d, 12, 0, 0, 0, today.Location()).Format(model.UsageDateLayout),
			Duration:         15 + 5*((n+d)%4),
			LessonsCompleted: (n + d) % 3,
			QuizzesTaken:     d % 2,
		}
		if err := usage.Upsert(ctx, l.ID, rec); err != nil {
			return err
		}
	}
	return nil
}

func syllabus(minutes int) []model.Lesson {
	count := minutes / 30
	if count < 1 {
		count = 1
	}
	lessons := make([]model.Lesson, count)
	for i := range lessons {
		typ := model.LessonTypeVideo
		if (i+1)%4 == 0 {
			typ = model.LessonTypeQuiz
		}
		lessons[i] = model.Lesson{
			ID:       fmt.Sprintf("lesson-%02d", i+1),
			Title:    fmt.Sprintf("Lesson %d", i+1),
			Type:     typ,
			Duration: 30,
			Order:    i + 1,
		}
	}
	return lessons
}
