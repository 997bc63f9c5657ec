package cache

import (
	"fmt"
	"strings"
	"time"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and configures a Store backend.
type Config struct {
	Backend   string        `yaml:"backend"`
	Dir       string        `yaml:"dir"`
	RedisAddr string        `yaml:"redisAddr"`
	TTL       time.Duration `yaml:"ttl"`
}

// Open builds the configured backend.
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendMemory:
		return NewMemoryStore(cfg.TTL, 0)
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendRedis:
		return NewRedisCache(cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
