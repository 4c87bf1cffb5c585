package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/model"
)

const (
	ActivityBatchSize    = 100
	ActivityBatchTimeout = 2 * time.Second
	ActivityPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ActivityWorker drains the activity queue, folds events into the daily
// usage log and per-course progress, and notifies dashboard streams.
type ActivityWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	loc  *time.Location
	log  zerolog.Logger
}

// NewActivityWorker creates an ActivityWorker. loc decides which calendar day
// an event belongs to and must match the zone the streak is evaluated in.
func NewActivityWorker(pool *pgxpool.Pool, rdb *redis.Client, loc *time.Location, log zerolog.Logger) *ActivityWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityWorker{
		pool: pool,
		rdb:  rdb,
		loc:  loc,
		log:  log.With().Str("component", "activity_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ActivityWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ActivityWorker started")

	batch := make([]model.ActivityEvent, 0, ActivityBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ActivityBatchSize || time.Since(lastFlush) >= ActivityBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ActivityPollTimeout, config.WorkerKey.PersistActivityQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var ev model.ActivityEvent
			if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, ev)
		}
	}
}

// ----------------------------------------------------------------
// Flush with per-learner fallback
// ----------------------------------------------------------------

func (w *ActivityWorker) flushSafe(ctx context.Context, batch []model.ActivityEvent) {
	if len(batch) == 0 {
		return
	}

	err := w.persist(ctx, batch)
	if err == nil {
		w.notify(ctx, batch)
		return
	}
	w.log.Warn().Err(err).Int("events", len(batch)).Msg("Bulk activity persist failed, retrying per learner")

	// One bad learner must not block everybody else's events.
	for learnerID, events := range groupByLearner(batch) {
		if err := w.persist(ctx, events); err != nil {
			w.log.Error().Err(err).Str("learner_id", learnerID.String()).Msg("Activity persist failed, moving to dead-letter queue")
			w.deadLetter(ctx, events)
			continue
		}
		w.notify(ctx, events)
	}
}

func (w *ActivityWorker) persist(ctx context.Context, events []model.ActivityEvent) error {
	usage := foldUsage(events, w.loc)
	progress := foldProgress(events)

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertUsage(ctx, tx, usage); err != nil {
		return fmt.Errorf("upsert usage: %w", err)
	}
	if err := applyProgress(ctx, tx, progress); err != nil {
		return fmt.Errorf("apply progress: %w", err)
	}

	return tx.Commit(ctx)
}

// notify tells open dashboard streams that fresh data is available.
func (w *ActivityWorker) notify(ctx context.Context, events []model.ActivityEvent) {
	pipe := w.rdb.Pipeline()
	for learnerID := range groupByLearner(events) {
		pipe.Publish(ctx, config.CacheKey.LearnerActivityChannel(learnerID), "persisted")
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Warn().Err(err).Msg("Activity notification failed")
	}
}

func (w *ActivityWorker) deadLetter(ctx context.Context, events []model.ActivityEvent) {
	pipe := w.rdb.Pipeline()
	for _, ev := range events {
		raw, _ := json.Marshal(ev)
		pipe.RPush(ctx, config.WorkerKey.DeadActivityQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("events", len(events)).Msg("Dead-letter push failed, events lost")
	}
}

// ----------------------------------------------------------------
// Pure folding of events into row deltas
// ----------------------------------------------------------------

type usageKey struct {
	learnerID uuid.UUID
	date      string
}

type usageDelta struct {
	LearnerID uuid.UUID
	model.UsageRecord
}

type progressKey struct {
	learnerID uuid.UUID
	productID uuid.UUID
}

type progressDelta struct {
	LearnerID        uuid.UUID
	ProductID        uuid.UUID
	LessonsCompleted int
	Minutes          int
	LastLesson       string
	LastAt           time.Time
}

// foldUsage sums events per learner and calendar day in loc.
func foldUsage(events []model.ActivityEvent, loc *time.Location) []usageDelta {
	idx := map[usageKey]int{}
	var out []usageDelta

	for _, ev := range events {
		k := usageKey{ev.LearnerID, ev.OccurredAt.In(loc).Format(model.UsageDateLayout)}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, usageDelta{LearnerID: ev.LearnerID, UsageRecord: model.UsageRecord{Date: k.date}})
		}

		d := &out[i]
		d.Duration += ev.Minutes
		switch ev.Type {
		case model.ActivityLessonCompleted:
			d.LessonsCompleted++
		case model.ActivityQuizTaken:
			d.QuizzesTaken++
		case model.ActivityAssignmentSubmitted:
			d.AssignmentsSubmitted++
		}
	}
	return out
}

// foldProgress sums watch time and lesson completions per enrollment. The
// latest event wins for the last watched lesson.
func foldProgress(events []model.ActivityEvent) []progressDelta {
	idx := map[progressKey]int{}
	var out []progressDelta

	for _, ev := range events {
		k := progressKey{ev.LearnerID, ev.ProductID}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, progressDelta{LearnerID: ev.LearnerID, ProductID: ev.ProductID})
		}

		d := &out[i]
		d.Minutes += ev.Minutes
		if ev.Type == model.ActivityLessonCompleted {
			d.LessonsCompleted++
		}
		if !ev.OccurredAt.Before(d.LastAt) {
			d.LastAt = ev.OccurredAt
			if ev.LessonID != "" {
				d.LastLesson = ev.LessonID
			}
		}
	}
	return out
}

func groupByLearner(events []model.ActivityEvent) map[uuid.UUID][]model.ActivityEvent {
	out := map[uuid.UUID][]model.ActivityEvent{}
	for _, ev := range events {
		out[ev.LearnerID] = append(out[ev.LearnerID], ev)
	}
	return out
}

// ----------------------------------------------------------------
// BULK PostgreSQL writes using UNNEST
// ----------------------------------------------------------------

func upsertUsage(ctx context.Context, tx pgx.Tx, rows []usageDelta) error {
	if len(rows) == 0 {
		return nil
	}

	// Stable lock order across concurrent flushes.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].LearnerID != rows[j].LearnerID {
			return rows[i].LearnerID.String() < rows[j].LearnerID.String()
		}
		return rows[i].Date < rows[j].Date
	})

	n := len(rows)
	learners := make([]uuid.UUID, n)
	dates := make([]string, n)
	durations := make([]int32, n)
	lessons := make([]int32, n)
	quizzes := make([]int32, n)
	assignments := make([]int32, n)
	for i, r := range rows {
		learners[i] = r.LearnerID
		dates[i] = r.Date
		durations[i] = int32(r.Duration)
		lessons[i] = int32(r.LessonsCompleted)
		quizzes[i] = int32(r.QuizzesTaken)
		assignments[i] = int32(r.AssignmentsSubmitted)
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO usage_records (learner_id, usage_date, duration, lessons_completed, quizzes_taken, assignments_submitted)
		SELECT u.learner_id, u.usage_date::date, u.duration, u.lessons, u.quizzes, u.assignments
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::int[],
			$4::int[],
			$5::int[],
			$6::int[]
		) AS u (learner_id, usage_date, duration, lessons, quizzes, assignments)
		ON CONFLICT (learner_id, usage_date) DO UPDATE SET
			duration              = usage_records.duration + EXCLUDED.duration,
			lessons_completed     = usage_records.lessons_completed + EXCLUDED.lessons_completed,
			quizzes_taken         = usage_records.quizzes_taken + EXCLUDED.quizzes_taken,
			assignments_submitted = usage_records.assignments_submitted + EXCLUDED.assignments_submitted
	`, learners, dates, durations, lessons, quizzes, assignments)
	return err
}

func applyProgress(ctx context.Context, tx pgx.Tx, rows []progressDelta) error {
	if len(rows) == 0 {
		return nil
	}

	n := len(rows)
	learners := make([]uuid.UUID, n)
	products := make([]uuid.UUID, n)
	completed := make([]int32, n)
	minutes := make([]int32, n)
	lastLessons := make([]string, n)
	lastAts := make([]time.Time, n)
	accessed := make(map[progressKey]time.Time, n)
	for i, r := range rows {
		learners[i] = r.LearnerID
		products[i] = r.ProductID
		completed[i] = int32(r.LessonsCompleted)
		minutes[i] = int32(r.Minutes)
		lastLessons[i] = r.LastLesson
		lastAts[i] = r.LastAt
		accessed[progressKey{r.LearnerID, r.ProductID}] = r.LastAt
	}

	reports, err := updateReports(ctx, tx, learners, products, completed, minutes, lastLessons, lastAts)
	if err != nil {
		return fmt.Errorf("update reports: %w", err)
	}

	current, err := lockEnrollments(ctx, tx, learners, products)
	if err != nil {
		return fmt.Errorf("lock enrollments: %w", err)
	}
	if len(current) == 0 {
		return nil
	}

	m := len(current)
	ids := make([]uuid.UUID, m)
	statuses := make([]string, m)
	progress := make([]int32, m)
	completedAts := make([]*time.Time, m)
	accessedAts := make([]time.Time, m)
	for i, e := range current {
		k := progressKey{e.LearnerID, e.ProductID}
		var report *reportState
		if r, ok := reports[k]; ok {
			report = &r
		}
		next := advanceEnrollment(e, report, accessed[k])

		ids[i] = next.ID
		statuses[i] = string(next.Status)
		progress[i] = int32(next.Progress)
		completedAts[i] = next.CompletedAt
		accessedAts[i] = accessed[k]
	}

	_, err = tx.Exec(ctx, `
		UPDATE enrollments AS e
		SET status           = t.status,
		    progress         = t.progress,
		    completed_at     = t.completed_at,
		    last_accessed_at = t.accessed_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::int[],
			$4::timestamptz[],
			$5::timestamptz[]
		) AS t (id, status, progress, completed_at, accessed_at)
		WHERE e.id = t.id
	`, ids, statuses, progress, completedAts, accessedAts)
	return err
}

// reportState is a progress report after this batch's deltas were applied.
type reportState struct {
	TotalLessons     int
	CompletedLessons int
}

func updateReports(ctx context.Context, tx pgx.Tx, learners, products []uuid.UUID,
	completed, minutes []int32, lastLessons []string, lastAts []time.Time) (map[progressKey]reportState, error) {
	rows, err := tx.Query(ctx, `
		UPDATE progress_reports AS p
		SET completed_lessons   = LEAST(p.total_lessons, p.completed_lessons + t.completed),
		    watched_duration    = p.watched_duration + t.minutes,
		    last_watched_lesson = COALESCE(NULLIF(t.last_lesson, ''), p.last_watched_lesson),
		    progress_percentage = CASE
		        WHEN p.total_lessons > 0
		        THEN LEAST(p.total_lessons, p.completed_lessons + t.completed)::float8 * 100 / p.total_lessons
		        ELSE p.progress_percentage END,
		    completion_date     = CASE
		        WHEN p.completion_date IS NULL AND p.total_lessons > 0
		             AND p.completed_lessons + t.completed >= p.total_lessons
		        THEN t.at ELSE p.completion_date END
		FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::int[],
			$4::int[],
			$5::text[],
			$6::timestamptz[]
		) AS t (learner_id, product_id, completed, minutes, last_lesson, at)
		WHERE p.learner_id = t.learner_id
		  AND p.product_id = t.product_id
		RETURNING p.learner_id, p.product_id, p.total_lessons, p.completed_lessons
	`, learners, products, completed, minutes, lastLessons, lastAts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[progressKey]reportState, len(learners))
	for rows.Next() {
		var k progressKey
		var r reportState
		if err := rows.Scan(&k.learnerID, &k.productID, &r.TotalLessons, &r.CompletedLessons); err != nil {
			return nil, err
		}
		out[k] = r
	}
	return out, rows.Err()
}

func lockEnrollments(ctx context.Context, tx pgx.Tx, learners, products []uuid.UUID) ([]model.Enrollment, error) {
	rows, err := tx.Query(ctx, `
		SELECT e.id, e.learner_id, e.product_id, e.status, e.progress, e.completed_at
		FROM enrollments AS e
		JOIN UNNEST($1::uuid[], $2::uuid[]) AS t (learner_id, product_id)
		  ON e.learner_id = t.learner_id AND e.product_id = t.product_id
		ORDER BY e.id
		FOR UPDATE OF e
	`, learners, products)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.LearnerID, &e.ProductID, &e.Status, &e.Progress, &e.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// advanceEnrollment applies a learner's new lesson count to the enrollment.
// Completed and cancelled enrollments keep their state, and progress never
// goes down. The course completes only once every lesson is done.
func advanceEnrollment(e model.Enrollment, report *reportState, at time.Time) model.Enrollment {
	if !at.IsZero() {
		e.LastAccessedAt = &at
	}
	if e.Status == model.EnrollmentStatusCompleted || e.Status == model.EnrollmentStatusCancelled {
		return e
	}
	if report == nil || report.TotalLessons <= 0 {
		return e
	}

	if report.CompletedLessons >= report.TotalLessons {
		e.Status = model.EnrollmentStatusCompleted
		e.Progress = 100
		if e.CompletedAt == nil {
			completedAt := at
			e.CompletedAt = &completedAt
		}
		return e
	}

	// Floor keeps 199/200 below 100.
	pct := report.CompletedLessons * 100 / report.TotalLessons
	if pct > e.Progress {
		e.Progress = pct
	}
	return e
}
