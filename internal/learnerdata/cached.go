package learnerdata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the byte store used for catalog entries.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache adapts a go-redis client to Cache.
type RedisCache struct {
	rdb redis.Cmdable
}

// NewRedisCache creates a RedisCache.
func NewRedisCache(rdb redis.Cmdable) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// CachedSource wraps a Source and caches catalog reads. Learner-specific
// reads always go to the wrapped Source.
type CachedSource struct {
	Source
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedSource wraps src with a catalog cache of the given TTL.
func NewCachedSource(src Source, cache Cache, ttl time.Duration, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		Source: src,
		cache:  cache,
		ttl:    ttl,
		log:    log.With().Str("component", "catalog_cache").Logger(),
	}
}

func (s *CachedSource) GetProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	key := config.CacheKey.ProductKey(productID)

	var cached model.Product
	if s.load(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := s.Source.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, p)
	return p, nil
}

func (s *CachedSource) ListProducts(ctx context.Context) ([]model.Product, error) {
	key := config.CacheKey.CatalogKey()

	var cached []model.Product
	if s.load(ctx, key, &cached) {
		return cached, nil
	}

	products, err := s.Source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, products)
	return products, nil
}

// load reports whether key was found and decoded. Cache failures fall through to the source.
func (s *CachedSource) load(ctx context.Context, key string, dst any) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn().Err(err).Str("key", key).Msg("Catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Catalog cache entry corrupt")
		return false
	}
	return true
}

func (s *CachedSource) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Catalog cache write failed")
	}
}
