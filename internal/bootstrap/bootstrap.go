// Package bootstrap provides application lifecycle helpers.
package bootstrap

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

// DefaultShutdownTimeout bounds the time given to shutdown hooks.
const DefaultShutdownTimeout = 10 * time.Second

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// App runs a binary until it returns or the process is asked to stop, then shuts it down gracefully.
type App struct {
	mu              sync.Mutex
	hooks           []hook
	shutdownTimeout time.Duration
	signals         []os.Signal
}

func New() *App {
	return &App{
		shutdownTimeout: DefaultShutdownTimeout,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// AddShutdownHook registers fn under name. Hooks run in reverse order of registration.
func (a *App) AddShutdownHook(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, hook{name: name, fn: fn})
}

// Run calls run with a context cancelled on SIGINT or SIGTERM.
// After a signal the hooks run, then Run waits for run to return.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, a.signals...)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	select {
	case err := <-errCh:
		if hookErr := a.shutdown(context.WithoutCancel(ctx)); hookErr != nil {
			return errors.Join(err, hookErr)
		}
		return err
	case <-ctx.Done():
		slog.Default().Info("shutting down")
	}

	hookErr := a.shutdown(context.WithoutCancel(ctx))
	if err := <-errCh; err != nil {
		return errors.Join(err, hookErr)
	}
	return hookErr
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	hooks := a.hooks
	a.hooks = nil
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, a.shutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", hooks[i].name, err))
		}
	}
	return errors.Join(errs...)
}
