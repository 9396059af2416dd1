// Package main contains the entrypoint for the ChatFlow analytics service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatflowhq/chatflow/internal/app"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes the application, serves until the context is cancelled,
// and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		return 1
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			slog.Error("application stopped with error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := application.Stop(shutdownCtx); err != nil {
		slog.Error("shutdown finished with errors", "error", err)
		return 1
	}
	return 0
}
