package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultTimeout bounds how long servers get to drain once shutdown starts.
const DefaultTimeout = 10 * time.Second

func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
			return
		case <-ch:
			cancel()
		}
	}()

	return ctx, cancel
}

// Drain runs stop with a fresh context bounded by timeout. The parent
// context is usually already cancelled at this point, so it is not reused.
func Drain(timeout time.Duration, stop func(ctx context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return stop(ctx)
}
