package shutdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Hook releases one resource. It should return once ctx is done.
type Hook func(context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler runs shutdown hooks once a stop condition occurs.
type Handler struct {
	timeout   time.Duration
	logger    *slog.Logger
	hooks     []namedHook
	mu        sync.Mutex
	trigger   chan struct{}
	triggered sync.Once
	done      chan struct{}
	signals   []os.Signal
}

// NewHandler creates a shutdown handler whose hooks share timeout.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		logger:  slog.Default(),
		trigger: make(chan struct{}),
		done:    make(chan struct{}),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// SetLogger replaces the handler's logger.
func (h *Handler) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// OnShutdown registers a hook. Hooks run in reverse order of registration.
func (h *Handler) OnShutdown(name string, hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: hook})
}

// Trigger starts shutdown without a signal. Extra calls are no-ops.
func (h *Handler) Trigger() {
	h.triggered.Do(func() { close(h.trigger) })
}

// Wait blocks until a signal arrives, ctx is done, or Trigger is called.
// It then runs every hook and returns their joined errors.
func (h *Handler) Wait(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		h.logger.Info("shutdown requested", "reason", context.Cause(ctx))
	case <-h.trigger:
		h.logger.Info("shutdown triggered")
	}

	return h.run()
}

func (h *Handler) run() error {
	defer close(h.done)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]namedHook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		if err := hook.fn(ctx); err != nil {
			h.logger.Error("shutdown hook failed", "hook", hook.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
			continue
		}
		h.logger.Debug("shutdown hook completed", "hook", hook.name)
	}
	return errors.Join(errs...)
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
