// Package shutdown runs a blocking component with signal-aware teardown.
package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Run starts runner in a goroutine and blocks until it returns or a
// SIGINT/SIGTERM arrives. On a signal the context handed to runner is
// canceled and Run waits up to timeout for it to finish.
func Run(ctx context.Context, logger *slog.Logger, timeout time.Duration, runner func(ctx context.Context) error) error {
	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	// Register before the runner starts so an early signal is not lost.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	runDone := make(chan error, 1)
	go func() {
		runDone <- runner(runCtx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "signal", sig)
		runCancel()

		select {
		case err := <-runDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case <-time.After(timeout):
			logger.Warn("shutdown timeout exceeded")
		}

		logger.Info("shutdown complete")
		return nil

	case err := <-runDone:
		return err
	}
}
