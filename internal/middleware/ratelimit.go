package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/response"
)

// RateCounter is the subset of the Redis client the limiter needs.
type RateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimiter is a fixed-window limiter whose counters live in Redis, so
// every API instance shares the same budget per client.
type RateLimiter struct {
	counter RateCounter
	scope   string
	limit   int
	window  time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window
// for each client within scope.
func NewRateLimiter(counter RateCounter, scope string, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		scope:   scope,
		limit:   limit,
		window:  window,
		now:     time.Now,
		log:     log.With().Str("component", "rate_limiter").Str("scope", scope).Logger(),
	}
}

// Middleware returns a Gin middleware that rate-limits requests. Clients are
// identified by JWT subject when authenticated, otherwise by IP.
// If Redis is unavailable the request is allowed through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		windowStart := rl.now().Truncate(rl.window)
		key := config.CacheKey.RateLimitKey(rl.scope, clientKey(c), windowStart)
		ctx := c.Request.Context()

		count, err := rl.counter.Incr(ctx, key).Result()
		if err != nil {
			rl.log.Warn().Err(err).Msg("Rate limit counter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			// Leave a little slack past the window end so clock skew
			// between instances cannot revive an old counter.
			// Keys are per window, so a missed expiry only leaks the counter.
			if err := rl.counter.Expire(ctx, key, rl.window+time.Second).Err(); err != nil {
				rl.log.Warn().Err(err).Str("key", key).Msg("Rate limit window expiry failed")
			}
		}

		remaining := int64(rl.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(rl.limit) {
			retryAfter := windowStart.Add(rl.window).Sub(rl.now())
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}

		c.Next()
	}
}

func clientKey(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil && claims.Subject != "" {
		return string(claims.TokenType) + ":" + claims.Subject
	}
	return "ip:" + c.ClientIP()
}
