// Package shutdown provides interrupt handling for jobctl.
//
// A poll loop can run for a minute or more; Ctrl-C should abort it
// cleanly through context cancellation rather than killing the
// process mid-request.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithSignals returns a context that is canceled on SIGINT or
// SIGTERM. The returned stop function releases the signal handler; a
// second signal after cancellation terminates the process through the
// default handler.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
