package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/model"
)

type recordingQueue struct {
	key    string
	values []interface{}
	err    error
}

func (q *recordingQueue) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	q.key = key
	q.values = append(q.values, values...)
	return redis.NewIntResult(int64(len(q.values)), q.err)
}

func TestActivityServiceRecord(t *testing.T) {
	q := &recordingQueue{}
	svc := NewActivityService(q)
	svc.now = func() time.Time { return fixedNow }

	learnerID := uuid.New()
	productID := uuid.New()
	ev, err := svc.Record(context.Background(), learnerID, model.RecordActivityRequest{
		ProductID: productID.String(),
		LessonID:  "lesson-3",
		Type:      model.ActivityLessonCompleted,
		Minutes:   12,
	})
	require.NoError(t, err)

	assert.Equal(t, config.WorkerKey.PersistActivityQueue, q.key)
	require.Len(t, q.values, 1)

	var queued model.ActivityEvent
	require.NoError(t, json.Unmarshal(q.values[0].([]byte), &queued))
	assert.Equal(t, *ev, queued)
	assert.Equal(t, learnerID, queued.LearnerID)
	assert.Equal(t, productID, queued.ProductID)
	assert.Equal(t, fixedNow, queued.OccurredAt)
}

func TestActivityServiceRecordErrors(t *testing.T) {
	svc := NewActivityService(&recordingQueue{})
	_, err := svc.Record(context.Background(), uuid.New(), model.RecordActivityRequest{ProductID: "nope"})
	assert.Error(t, err)

	cause := errors.New("redis down")
	svc = NewActivityService(&recordingQueue{err: cause})
	_, err = svc.Record(context.Background(), uuid.New(), model.RecordActivityRequest{ProductID: uuid.NewString()})
	assert.ErrorIs(t, err, cause)
}
