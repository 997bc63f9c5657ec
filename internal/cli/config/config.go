package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codearena/internal/common/cache"
	"codearena/pkg/utils/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL      = "http://localhost:8000/api"
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 150
	DefaultStatePath    = "~/.codearena/state.json"
	DefaultCacheDir     = "~/.codearena/cache"
	DefaultCacheTTL     = 24 * time.Hour
	DefaultUserID       = "guest"
	DefaultLanguage     = "java"

	// BaseURLEnv overrides DefaultBaseURL when the config file sets no base URL.
	BaseURLEnv = "ARENA_API_URL"
)

// Config holds CLI configuration.
type Config struct {
	BaseURL   string        `yaml:"baseURL"`
	Timeout   time.Duration `yaml:"timeout"`
	Poll      PollConfig    `yaml:"poll"`
	Cache     cache.Config  `yaml:"cache"`
	StatePath string        `yaml:"statePath"`
	UserID    string        `yaml:"userID"`
	Language  string        `yaml:"language"`
	Render    RenderConfig  `yaml:"render"`
	Log       logger.Config `yaml:"log"`
}

// PollConfig tunes the submission status loop.
type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"maxAttempts"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RenderConfig controls terminal output.
type RenderConfig struct {
	Markdown *bool  `yaml:"markdown"`
	Style    string `yaml:"style"`
}

// MarkdownEnabled reports whether statements are rendered through glamour.
func (r RenderConfig) MarkdownEnabled() bool {
	return r.Markdown == nil || *r.Markdown
}

// Load reads path if it exists, then fills defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(expandHome(path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config file failed: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file failed: %w", err)
			}
		}
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s failed: %w", p, err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
		if env := strings.TrimSpace(os.Getenv(BaseURLEnv)); env != "" {
			cfg.BaseURL = env
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = DefaultPollInterval
	}
	if cfg.Poll.MaxAttempts == 0 {
		cfg.Poll.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = cache.BackendFile
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = DefaultCacheDir
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}
	cfg.StatePath = expandHome(cfg.StatePath)
	if cfg.UserID == "" {
		cfg.UserID = DefaultUserID
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Render.Style == "" {
		cfg.Render.Style = "auto"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.OutputPath == "" {
		cfg.Log.OutputPath = "stderr"
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
