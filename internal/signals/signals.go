// Package signals turns Ctrl-C into context cancellation and, on a second
// press, into process termination.
package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
)

// ForwardInterrupt returns a context that is canceled on the first SIGINT or
// SIGTERM. Subprocesses started with that context are killed with it. A
// second signal sends SIGTERM to the process itself. Call stop to release
// the handler.
func ForwardInterrupt(parent context.Context, logger *log.Logger) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	released := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		forward(sigCh, released, cancel, func() {
			signal.Stop(sigCh)
			terminate()
		}, logger)
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(released)
			cancel()
			<-done
		})
	}
}

func forward(sigCh <-chan os.Signal, released <-chan struct{}, cancel context.CancelFunc, kill func(), logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}

	select {
	case sig := <-sigCh:
		logger.Warn("interrupted, stopping", "signal", sig.String())
		cancel()
	case <-released:
		return
	}

	select {
	case sig := <-sigCh:
		logger.Warn("terminating", "signal", sig.String())
		kill()
	case <-released:
	}
}
