// Package lifecycle coordinates service startup and shutdown sequencing.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrStartupTimeout indicates startup tasks did not complete in time.
var ErrStartupTimeout = errors.New("startup did not complete before timeout")

// Coordinator sequences startup tasks, readiness, and ordered shutdown.
// Startup hooks run concurrently; shutdown hooks run in reverse
// registration order so dependents stop before their dependencies.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu       sync.Mutex
	startup  []func(context.Context) error
	shutdown []namedHook
	ready    chan struct{}
	once     sync.Once
	errs     []error
}

type namedHook struct {
	name string
	fn   func(context.Context) error
}

// New creates a Coordinator rooted at the given parent context.
func New(parent context.Context, logger *slog.Logger) *Coordinator {
	ctx, cancel := context.WithCancel(parent)
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Context returns the coordinator's context, canceled when shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a task to run when startup begins.
func (c *Coordinator) OnStartup(fn func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startup = append(c.startup, fn)
}

// OnShutdown registers a named hook to run during shutdown. Hooks run in
// reverse registration order.
func (c *Coordinator) OnShutdown(name string, fn func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = append(c.shutdown, namedHook{name: name, fn: fn})
}

// Start runs all registered startup tasks concurrently and marks the
// coordinator ready when they all succeed.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	tasks := make([]func(context.Context) error, len(c.startup))
	copy(tasks, c.startup)
	c.mu.Unlock()

	var wg sync.WaitGroup
	errCh := make(chan error, len(tasks))

	for _, task := range tasks {
		wg.Add(1)
		go func(fn func(context.Context) error) {
			defer wg.Done()
			if err := fn(c.ctx); err != nil {
				errCh <- err
			}
		}(task)
	}

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.once.Do(func() { close(c.ready) })
	return nil
}

// WaitForStartup blocks until the coordinator is ready or the timeout elapses.
func (c *Coordinator) WaitForStartup(timeout time.Duration) error {
	select {
	case <-c.ready:
		return nil
	case <-time.After(timeout):
		return ErrStartupTimeout
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// Ready reports whether startup has completed.
func (c *Coordinator) Ready() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// Shutdown cancels the coordinator context and runs shutdown hooks in
// reverse order, each bounded by the remaining timeout. Hook failures are
// collected rather than aborting the sequence.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c.mu.Lock()
	hooks := make([]namedHook, len(c.shutdown))
	copy(hooks, c.shutdown)
	c.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		if err := hook.fn(ctx); err != nil {
			c.logger.Error("shutdown hook failed", "hook", hook.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
		} else {
			c.logger.Debug("shutdown hook complete", "hook", hook.name)
		}
	}

	return errors.Join(errs...)
}
