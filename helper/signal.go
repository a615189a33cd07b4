package helper

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalWatchProcess blocks until ctx is canceled or the process receives
// SIGINT/SIGTERM, then returns. Intended to run as one leg of an
// errgroup.Group alongside the servers it should bring down.
func SignalWatchProcess(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-sigCh:
		return nil
	}
}
