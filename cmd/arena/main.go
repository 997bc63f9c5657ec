package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codearena/internal/cli/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, opts := newRootCmd()
	err := execute(ctx, root, opts)
	stop()
	if err == nil {
		return
	}
	// Per-test results are already on screen.
	if !errors.Is(err, app.ErrTestsFailed) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}
