package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tinyhttpd/pkg/state/logger"
)

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigc)
		select {
		case s := <-sigc:
			logger.Info("signal_received", "signal", s.String(), "msg", "shutdown requested")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// ContextTrigger fires when ctx is done.
func ContextTrigger(ctx context.Context, source string) Trigger {
	return func(stop <-chan struct{}, fire func(string) bool) {
		select {
		case <-ctx.Done():
			fire(source)
		case <-stop:
		}
	}
}
