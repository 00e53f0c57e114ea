package extractor

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownContext returns a child of parent that is cancelled when the
// process receives SIGINT or SIGTERM. onSignal, when non-nil, runs before
// the cancellation so the caller can log what interrupted the run. The
// returned cancel function releases the signal registration.
func ShutdownContext(parent context.Context, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
