package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalHandler waits for the signals that end a foreground daemon.
type SignalHandler struct {
	signals chan os.Signal
}

// NewSignalHandler registers for SIGINT, SIGTERM and SIGHUP.
func NewSignalHandler() *SignalHandler {
	h := &SignalHandler{signals: make(chan os.Signal, 1)}
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	return h
}

// Wait blocks until a shutdown signal arrives or ctx is cancelled. It
// returns nil in the latter case.
func (h *SignalHandler) Wait(ctx context.Context) os.Signal {
	select {
	case sig := <-h.signals:
		return sig
	case <-ctx.Done():
		return nil
	}
}

// Stop unregisters the handler.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
}
