package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/collection"
)

const (
	memoryCacheName     = "codearena-memory"
	defaultMemoryExpire = 24 * time.Hour
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps entries in process memory for the life of a session.
// The collection's timing wheel evicts lazily, so expiry is also checked on read.
type MemoryStore struct {
	cache  *collection.Cache
	expire time.Duration

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemoryStore creates a store whose entries without a TTL expire after expire.
func NewMemoryStore(expire time.Duration, limit int) (*MemoryStore, error) {
	if expire <= 0 {
		expire = defaultMemoryExpire
	}
	opts := []collection.CacheOption{collection.WithName(memoryCacheName)}
	if limit > 0 {
		opts = append(opts, collection.WithLimit(limit))
	}
	c, err := collection.NewCache(expire, opts...)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: c, expire: expire, keys: make(map[string]struct{})}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	entry, ok := m.lookup(key)
	if !ok {
		return "", nil
	}
	return entry.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.expire
	}
	m.cache.SetWithExpire(key, memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}, ttl)
	m.mu.Lock()
	m.keys[key] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.cache.Del(key)
		m.forget(key)
	}
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	candidates := make([]string, 0, len(m.keys))
	for key := range m.keys {
		if strings.HasPrefix(key, prefix) {
			candidates = append(candidates, key)
		}
	}
	m.mu.Unlock()

	out := candidates[:0]
	for _, key := range candidates {
		if _, ok := m.lookup(key); ok {
			out = append(out, key)
		}
	}
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) lookup(key string) (memoryEntry, bool) {
	value, ok := m.cache.Get(key)
	if ok {
		entry, valid := value.(memoryEntry)
		if valid && time.Now().Before(entry.expiresAt) {
			return entry, true
		}
		m.cache.Del(key)
	}
	m.forget(key)
	return memoryEntry{}, false
}

func (m *MemoryStore) forget(key string) {
	m.mu.Lock()
	delete(m.keys, key)
	m.mu.Unlock()
}
