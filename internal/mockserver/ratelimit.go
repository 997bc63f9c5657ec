package mockserver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"codearena/internal/common/cache"
	pkgerrors "codearena/pkg/errors"
	"codearena/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

const (
	rateLimitHeader     = "X-RateLimit-Limit"
	rateRemainingHeader = "X-RateLimit-Remaining"
	storeTimeout        = 2 * time.Second
)

// RateLimiter enforces a fixed window per key.
type RateLimiter struct {
	counter cache.CounterOps
	max     int
	window  time.Duration
}

func NewRateLimiter(counter cache.CounterOps, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{counter: counter, max: max, window: window}
}

// Allow counts one hit against key and returns how many remain in the window.
func (r *RateLimiter) Allow(ctx context.Context, key string) (int, error) {
	if r.max <= 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	acquired, err := r.counter.SetNX(ctx, key, 1, r.window)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, pkgerrors.CacheError, "rate limit check failed")
	}
	count := int64(1)
	if !acquired {
		count, err = r.counter.Incr(ctx, key)
		if err != nil {
			return 0, pkgerrors.Wrapf(err, pkgerrors.CacheError, "rate limit check failed")
		}
		ttl, ttlErr := r.counter.TTL(ctx, key)
		if ttlErr == nil && ttl <= 0 {
			_ = r.counter.Expire(ctx, key, r.window)
		}
	}
	if int(count) > r.max {
		return 0, pkgerrors.New(pkgerrors.TooManyRequests).
			WithMessage(fmt.Sprintf("Rate limit exceeded: %d per %s", r.max, describeWindow(r.window)))
	}
	return r.max - int(count), nil
}

// RateLimit limits each client IP on routeKey and reports the quota in headers.
func RateLimit(limiter *RateLimiter, keyPrefix, routeKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limiter.max <= 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("%srate:%s:%s", keyPrefix, routeKey, c.ClientIP())
		c.Header(rateLimitHeader, strconv.Itoa(limiter.max))
		remaining, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			c.Header(rateRemainingHeader, "0")
			response.AbortWithError(c, err)
			return
		}
		c.Header(rateRemainingHeader, strconv.Itoa(remaining))
		c.Next()
	}
}

func describeWindow(d time.Duration) string {
	switch {
	case d == time.Minute:
		return "1 minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
