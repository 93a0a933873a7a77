package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testCoordinator() *Coordinator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(context.Background(), logger)
}

func TestStartupSuccess(t *testing.T) {
	c := testCoordinator()

	ran := false
	c.OnStartup(func(ctx context.Context) error {
		ran = true
		return nil
	})

	if c.Ready() {
		t.Error("ready before startup")
	}

	if err := c.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !ran {
		t.Error("startup task did not run")
	}
	if !c.Ready() {
		t.Error("not ready after successful startup")
	}

	if err := c.WaitForStartup(time.Second); err != nil {
		t.Errorf("WaitForStartup() error: %v", err)
	}
}

func TestStartupFailure(t *testing.T) {
	c := testCoordinator()

	boom := errors.New("boom")
	c.OnStartup(func(ctx context.Context) error { return nil })
	c.OnStartup(func(ctx context.Context) error { return boom })

	err := c.Start()
	if !errors.Is(err, boom) {
		t.Fatalf("Start() error = %v, want boom", err)
	}
	if c.Ready() {
		t.Error("ready after failed startup")
	}
}

func TestWaitForStartupTimeout(t *testing.T) {
	c := testCoordinator()

	if err := c.WaitForStartup(10 * time.Millisecond); !errors.Is(err, ErrStartupTimeout) {
		t.Errorf("WaitForStartup() error = %v, want ErrStartupTimeout", err)
	}
}

func TestShutdownReverseOrder(t *testing.T) {
	c := testCoordinator()

	var order []string
	c.OnShutdown("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	c.OnShutdown("second", func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	if err := c.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("shutdown order = %v, want [second first]", order)
	}

	select {
	case <-c.Context().Done():
	default:
		t.Error("context not canceled after shutdown")
	}
}

func TestShutdownCollectsErrors(t *testing.T) {
	c := testCoordinator()

	failed := errors.New("hook failed")
	var secondRan bool

	c.OnShutdown("failing", func(ctx context.Context) error { return failed })
	c.OnShutdown("surviving", func(ctx context.Context) error {
		secondRan = true
		return nil
	})

	err := c.Shutdown(time.Second)
	if !errors.Is(err, failed) {
		t.Errorf("Shutdown() error = %v, want wrapped hook failure", err)
	}
	if !secondRan {
		t.Error("later hooks skipped after failure")
	}
}
