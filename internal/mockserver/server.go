package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"codearena/internal/common/cache"
	"codearena/internal/common/http/middleware"
	"codearena/pkg/utils/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	apiPrefix       = "/api"
	shutdownTimeout = 5 * time.Second
)

// Server is the scripted stand-in for the platform backend.
type Server struct {
	cfg    Config
	engine *gin.Engine
}

// New wires routes and middleware over backend.
func New(cfg Config, backend Backend) *Server {
	cfg.ApplyDefaults()
	h := &handler{cfg: cfg, store: newStore(backend, cfg.Redis.KeyPrefix, cfg.Judge.SubmissionTTL)}
	limiter := NewRateLimiter(backend, cfg.Chat.RateLimit, cfg.Chat.RateWindow)

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Trace(), middleware.AccessLog(), middleware.CORS(cfg.CORS))
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group(apiPrefix)
	api.POST("/problem-generator/generate", h.generate)
	api.POST("/problem-submission/submit", h.submit)
	api.POST("/problem-submission/submissions-status", h.status)
	api.POST("/codeassist/chat", RateLimit(limiter, cfg.Redis.KeyPrefix, "chat"), h.chat)

	return &Server{cfg: cfg, engine: engine}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr(), Handler: s.engine}
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "mock backend listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info(ctx, "mock backend shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// OpenBackend connects to the configured redis, or starts an embedded one
// when no address is set. The returned func releases it.
func OpenBackend(cfg RedisConfig) (Backend, func(), error) {
	if cfg.Addr != "" {
		redisCfg := cache.DefaultRedisConfig()
		redisCfg.Addr = cfg.Addr
		redisCfg.Password = cfg.Password
		rc, err := cache.NewRedisCacheWithConfig(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return rc, func() { _ = rc.Close() }, nil
	}

	embedded, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start embedded redis: %w", err)
	}
	rc, err := cache.NewRedisCache(embedded.Addr())
	if err != nil {
		embedded.Close()
		return nil, nil, err
	}
	return rc, func() {
		_ = rc.Close()
		embedded.Close()
	}, nil
}
