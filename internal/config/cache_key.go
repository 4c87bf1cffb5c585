package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ProductKey returns the cache key for a single catalog product
func (r *CacheKeyStruct) ProductKey(productID uuid.UUID) string {
	return fmt.Sprintf("catalog:product:%s", productID)
}

// CatalogKey returns the cache key for the full product listing
func (r *CacheKeyStruct) CatalogKey() string {
	return "catalog:products"
}

// LearnerActivityChannel returns the Redis PubSub channel notified when a learner's activity is persisted
func (r *CacheKeyStruct) LearnerActivityChannel(learnerID uuid.UUID) string {
	return fmt.Sprintf("learner:%s:activity", learnerID)
}

// RateLimitKey returns the counter key for a client within a fixed window
func (r *CacheKeyStruct) RateLimitKey(scope, client string, window time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, client, window.Unix())
}

var CacheKey = NewCacheKeyStruct()
