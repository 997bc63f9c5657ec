package cache

import (
	"context"
	"time"
)

// Store is the key-value surface shared by every cache backend.
// Get returns "" with a nil error when the key is absent.
type Store interface {
	BasicOps
	KeyOps

	// Close releases the backend
	Close() error
}

// BasicOps defines basic key-value operations
type BasicOps interface {
	// Get retrieves the value for the given key
	Get(ctx context.Context, key string) (string, error)

	// Set stores a key-value pair with optional TTL
	// If ttl is 0, the key will not expire
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del deletes one or more keys
	Del(ctx context.Context, keys ...string) error
}

// KeyOps enumerates keys.
type KeyOps interface {
	// Keys returns every live key starting with prefix
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// CounterOps are the atomic operations used for poll counting and rate limiting.
type CounterOps interface {
	// SetNX sets the value only if the key does not exist (atomic operation)
	// Returns true if the key was set, false if it already existed
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Incr increments the integer value of a key by 1
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets a timeout on a key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining time to live of a key
	// Returns -1 if the key exists but has no expiration
	// Returns -2 if the key does not exist
	TTL(ctx context.Context, key string) (time.Duration, error)
}
