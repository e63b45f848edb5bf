package kerr

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptibleContext returns a context that is canceled when the process
// receives SIGINT or SIGTERM, so a long-running merge/selector/emitter loop
// can stop at its next I/O boundary instead of being killed mid-write.
func InterruptibleContext() (context.Context, context.CancelFunc) {
	ctx, canc := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		// A second signal results in immediate termination, useful if
		// cleanup hangs.
		signal.Stop(sig)
		canc()
	}()
	return ctx, canc
}
