package cmd

import (
	"context"
	"os/signal"
	"syscall"
)

// SignalContext returns a copy of ctx that is cancelled upon the first SIGINT
// or SIGTERM.
func SignalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
}
