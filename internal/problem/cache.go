package problem

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"codearena/internal/common/cache"
	"codearena/internal/model"
	"codearena/pkg/utils/logger"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

const (
	// KeyPrefix namespaces cached problems inside a shared store.
	KeyPrefix = "code_space_problem_"
	// DefaultExpiry is how long a cached problem stays usable.
	DefaultExpiry = 24 * time.Hour
)

// CachedProblem is a problem plus the bookkeeping the cache needs.
type CachedProblem struct {
	model.Problem
	Timestamp int64  `json:"timestamp"`
	Category  string `json:"category"`
}

// CachedAt returns when the entry was written.
func (c CachedProblem) CachedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Cache keeps the current problem per category. Storage failures never
// reach the caller: reads degrade to a miss and writes are dropped.
type Cache struct {
	store  cache.Store
	expiry time.Duration
	now    func() time.Time

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Option customises a Cache.
type Option func(*Cache)

// WithExpiry overrides DefaultExpiry.
func WithExpiry(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.expiry = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func NewCache(store cache.Store, opts ...Option) (*Cache, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, err
	}
	c := &Cache{
		store:   store,
		expiry:  DefaultExpiry,
		now:     time.Now,
		encoder: encoder,
		decoder: decoder,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Key returns the store key for a category.
func Key(category string) string {
	return KeyPrefix + category
}

// Get returns the cached problem for category, or false when there is none
// or it has expired. Expired entries are removed.
func (c *Cache) Get(ctx context.Context, category string) (CachedProblem, bool) {
	key := Key(category)
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Warn(ctx, "read problem cache failed", zap.String("key", key), zap.Error(err))
		return CachedProblem{}, false
	}
	if raw == "" {
		return CachedProblem{}, false
	}

	var entry CachedProblem
	if err := c.decode(raw, &entry); err != nil {
		logger.Warn(ctx, "decode problem cache failed", zap.String("key", key), zap.Error(err))
		return CachedProblem{}, false
	}
	if c.now().Sub(entry.CachedAt()) > c.expiry {
		logger.Debug(ctx, "problem cache expired", zap.String("key", key))
		if err := c.store.Del(ctx, key); err != nil {
			logger.Warn(ctx, "remove expired problem failed", zap.String("key", key), zap.Error(err))
		}
		return CachedProblem{}, false
	}
	return entry, true
}

// Set stores p under category, stamped with the current time.
func (c *Cache) Set(ctx context.Context, category string, p model.Problem) {
	key := Key(category)
	entry := CachedProblem{Problem: p, Timestamp: c.now().UnixMilli(), Category: category}
	data, err := json.Marshal(entry)
	if err != nil {
		logger.Warn(ctx, "encode problem cache failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, string(c.encoder.EncodeAll(data, nil)), c.expiry); err != nil {
		logger.Warn(ctx, "write problem cache failed", zap.String("key", key), zap.Error(err))
		return
	}
	logger.Debug(ctx, "problem cached", zap.String("key", key), zap.String("title", p.ProblemTitle))
}

// Clear drops the entry for category; an empty category drops every entry.
func (c *Cache) Clear(ctx context.Context, category string) {
	if strings.TrimSpace(category) == "" {
		c.ClearAll(ctx)
		return
	}
	if err := c.store.Del(ctx, Key(category)); err != nil {
		logger.Warn(ctx, "clear problem cache failed", zap.String("category", category), zap.Error(err))
	}
}

// ClearAll drops every cached problem and leaves other keys alone.
func (c *Cache) ClearAll(ctx context.Context) {
	keys, err := c.store.Keys(ctx, KeyPrefix)
	if err != nil {
		logger.Warn(ctx, "list problem cache failed", zap.Error(err))
		return
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		logger.Warn(ctx, "clear problem cache failed", zap.Error(err))
	}
}

// Categories lists the categories with a live entry.
func (c *Cache) Categories(ctx context.Context) []string {
	keys, err := c.store.Keys(ctx, KeyPrefix)
	if err != nil {
		logger.Warn(ctx, "list problem cache failed", zap.Error(err))
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, strings.TrimPrefix(key, KeyPrefix))
	}
	return out
}

func (c *Cache) decode(raw string, entry *CachedProblem) error {
	data, err := c.decoder.DecodeAll([]byte(raw), nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, entry)
}
