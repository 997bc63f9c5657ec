package mockserver

import (
	"time"

	"codearena/internal/common/http/middleware"
	"codearena/pkg/utils/logger"
)

// Config is loaded from etc/arena-mock.yaml.
type Config struct {
	Host  string `json:",default=0.0.0.0"`
	Port  int    `json:",default=8000"`
	Redis RedisConfig
	Judge JudgeConfig
	Chat  ChatConfig
	CORS  middleware.CORSConfig
	Log   logger.Config
}

// RedisConfig points at the state store. An empty Addr starts an embedded one.
type RedisConfig struct {
	Addr      string `json:",optional"`
	Password  string `json:",optional"`
	KeyPrefix string `json:",default=arena:mock:"`
}

// JudgeConfig scripts the fake judge.
type JudgeConfig struct {
	// PendingPolls is how many status checks report completed=false first.
	PendingPolls   int           `json:",default=2"`
	FailingIndices []int         `json:",optional"`
	SubmissionTTL  time.Duration `json:",default=10m"`
}

// ChatConfig scripts the fake assistant.
type ChatConfig struct {
	Reply      string        `json:",optional"`
	ChunkDelay time.Duration `json:",default=50ms"`
	RateLimit  int           `json:",default=3"`
	RateWindow time.Duration `json:",default=1m"`
}

// ApplyDefaults fills zero values for configs built in code rather than loaded.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "arena:mock:"
	}
	if c.Judge.PendingPolls < 0 {
		c.Judge.PendingPolls = 0
	}
	if c.Judge.SubmissionTTL <= 0 {
		c.Judge.SubmissionTTL = 10 * time.Minute
	}
	if c.Chat.RateWindow <= 0 {
		c.Chat.RateWindow = time.Minute
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost"}
	}
	if len(c.CORS.ExposedHeaders) == 0 {
		c.CORS.ExposedHeaders = []string{rateLimitHeader, rateRemainingHeader, middleware.RequestIDHeader}
	}
}
