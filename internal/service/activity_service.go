package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// ActivityQueue is the subset of the Redis client used to enqueue events.
type ActivityQueue interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// ActivityService accepts learning events and queues them for the activity worker.
type ActivityService struct {
	queue ActivityQueue
	now   func() time.Time
}

// NewActivityService creates a new ActivityService.
func NewActivityService(queue ActivityQueue) *ActivityService {
	return &ActivityService{queue: queue, now: time.Now}
}

// Record validates ids and enqueues the event. Persistence happens asynchronously.
func (s *ActivityService) Record(ctx context.Context, learnerID uuid.UUID, req model.RecordActivityRequest) (*model.ActivityEvent, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("parse product id: %w", err)
	}

	ev := &model.ActivityEvent{
		LearnerID:  learnerID,
		ProductID:  productID,
		LessonID:   req.LessonID,
		Type:       req.Type,
		Minutes:    req.Minutes,
		OccurredAt: s.now().UTC(),
	}

	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	if err := s.queue.RPush(ctx, config.WorkerKey.PersistActivityQueue, raw).Err(); err != nil {
		return nil, fmt.Errorf("enqueue activity: %w", err)
	}
	return ev, nil
}
