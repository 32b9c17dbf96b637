// Package shutdown coordinates graceful teardown: the server stops
// accepting requests, then persisted state flushes to disk, then
// auxiliary resources close. Hooks run sequentially in registration
// order so flushes always happen after the traffic stops.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Common errors.
var (
	// ErrAlreadyShutdown indicates shutdown was already initiated.
	ErrAlreadyShutdown = errors.New("shutdown already initiated")

	// ErrTimeout indicates shutdown did not complete within the timeout.
	ErrTimeout = errors.New("shutdown timeout exceeded")
)

// DefaultTimeout bounds a signal-triggered shutdown.
const DefaultTimeout = 30 * time.Second

// Hook releases one component. The context is cancelled when the shutdown
// timeout is reached.
type Hook func(ctx context.Context) error

// HookResult reports one completed hook, for logging.
type HookResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Coordinator runs registered hooks once, in order, on Shutdown or on
// SIGINT/SIGTERM.
type Coordinator struct {
	mu    sync.Mutex
	hooks []registration

	once    sync.Once
	done    chan struct{}
	err     error
	signals chan os.Signal

	// OnProgress, when set, is called after each hook completes.
	OnProgress func(HookResult)
}

type registration struct {
	name string
	hook Hook
}

// New creates a Coordinator.
func New() *Coordinator {
	return &Coordinator{
		done:    make(chan struct{}),
		signals: make(chan os.Signal, 1),
	}
}

// Register adds a hook. Hooks run in registration order.
func (c *Coordinator) Register(name string, hook Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, registration{name: name, hook: hook})
}

// Shutdown runs all hooks once. A second call returns the first call's
// result after it completes.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		c.err = c.run(ctx)
		close(c.done)
	})
	<-c.done
	return c.err
}

// ShutdownWithTimeout runs Shutdown bounded by the given timeout.
func (c *Coordinator) ShutdownWithTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Shutdown(ctx)
}

// HandleSignals triggers shutdown on SIGINT or SIGTERM.
func (c *Coordinator) HandleSignals() {
	signal.Notify(c.signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-c.signals
		_ = c.ShutdownWithTimeout(DefaultTimeout)
	}()
}

// Trigger initiates shutdown as if a signal had arrived.
func (c *Coordinator) Trigger() {
	select {
	case c.signals <- syscall.SIGTERM:
	default:
	}
}

// Done is closed when shutdown has completed.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Err returns the shutdown error, or nil before completion.
func (c *Coordinator) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

func (c *Coordinator) run(ctx context.Context) error {
	c.mu.Lock()
	hooks := make([]registration, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()

	var firstErr error
	for _, reg := range hooks {
		select {
		case <-ctx.Done():
			if firstErr == nil {
				firstErr = ErrTimeout
			}
			return firstErr
		default:
		}

		start := time.Now()
		err := reg.hook(ctx)
		if c.OnProgress != nil {
			c.OnProgress(HookResult{Name: reg.name, Duration: time.Since(start), Err: err})
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
