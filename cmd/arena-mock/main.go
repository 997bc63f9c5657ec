package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codearena/internal/mockserver"
	"codearena/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/zeromicro/go-zero/core/conf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var configFile = flag.String("f", "etc/arena-mock.yaml", "the config file")

func main() {
	flag.Parse()

	var c mockserver.Config
	conf.MustLoad(*configFile, &c)
	c.ApplyDefaults()

	if err := logger.Init(c.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	gin.SetMode(gin.ReleaseMode)

	if err := run(c); err != nil {
		logger.Error(context.Background(), "mock backend stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(c mockserver.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, release, err := mockserver.OpenBackend(c.Redis)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer release()
	if c.Redis.Addr == "" {
		logger.Info(ctx, "using embedded redis for mock state")
	}

	server := mockserver.New(c, backend)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "stop signal received")
		return nil
	})
	return g.Wait()
}
