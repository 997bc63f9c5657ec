package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codearena/internal/cli/config"
	"codearena/internal/testutil"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(config.BaseURLEnv, "")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	testutil.MustNoError(t, err)

	testutil.AssertEqual(t, cfg.BaseURL, config.DefaultBaseURL)
	testutil.AssertEqual(t, cfg.Timeout, config.DefaultTimeout)
	testutil.AssertEqual(t, cfg.Poll.Interval, 2*time.Second)
	testutil.AssertEqual(t, cfg.Poll.MaxAttempts, 150)
	testutil.AssertEqual(t, cfg.Poll.Timeout, time.Duration(0))
	testutil.AssertEqual(t, cfg.Cache.Backend, "file")
	testutil.AssertEqual(t, cfg.Cache.TTL, 24*time.Hour)
	testutil.AssertEqual(t, cfg.UserID, "guest")
	testutil.AssertEqual(t, cfg.Language, "java")
	testutil.AssertTrue(t, cfg.Render.MarkdownEnabled(), "markdown on by default")
	testutil.AssertEqual(t, cfg.Log.Level, "warn")
	testutil.AssertEqual(t, cfg.Log.OutputPath, "stderr")
	testutil.AssertTrue(t, filepath.IsAbs(cfg.StatePath) || cfg.StatePath == config.DefaultStatePath, "home is expanded")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	content := `
baseURL: http://judge.internal/api
timeout: 5s
poll:
  interval: 500ms
  maxAttempts: -1
  timeout: 1m
cache:
  backend: memory
language: python
render:
  markdown: false
log:
  level: debug
`
	testutil.MustNoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, cfg.BaseURL, "http://judge.internal/api")
	testutil.AssertEqual(t, cfg.Timeout, 5*time.Second)
	testutil.AssertEqual(t, cfg.Poll.Interval, 500*time.Millisecond)
	testutil.AssertEqual(t, cfg.Poll.MaxAttempts, -1)
	testutil.AssertEqual(t, cfg.Poll.Timeout, time.Minute)
	testutil.AssertEqual(t, cfg.Cache.Backend, "memory")
	testutil.AssertEqual(t, cfg.Language, "python")
	testutil.AssertFalse(t, cfg.Render.MarkdownEnabled(), "markdown disabled")
	testutil.AssertEqual(t, cfg.Log.Level, "debug")
}

func TestEnvBaseURL(t *testing.T) {
	t.Setenv(config.BaseURLEnv, "http://from-env:9000/api")
	cfg, err := config.Load("")
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, cfg.BaseURL, "http://from-env:9000/api")

	path := filepath.Join(t.TempDir(), "cli.yaml")
	testutil.MustNoError(t, os.WriteFile(path, []byte("baseURL: http://from-file/api\n"), 0o644))
	cfg, err = config.Load(path)
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, cfg.BaseURL, "http://from-file/api")
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv(config.BaseURLEnv, "")
	os.Unsetenv(config.BaseURLEnv)
	path := filepath.Join(t.TempDir(), ".env")
	testutil.MustNoError(t, os.WriteFile(path, []byte("ARENA_API_URL=http://dotenv:8000/api\n"), 0o644))

	testutil.MustNoError(t, config.LoadEnv(path))
	testutil.AssertEqual(t, os.Getenv(config.BaseURLEnv), "http://dotenv:8000/api")

	testutil.MustNoError(t, config.LoadEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	testutil.MustNoError(t, os.WriteFile(path, []byte("timeout: [oops\n"), 0o644))
	_, err := config.Load(path)
	testutil.AssertTrue(t, err != nil, "invalid yaml is reported")
}
