package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aristath/miniplan/internal/logging"
	"github.com/aristath/miniplan/internal/persistence"
)

func newTestGuard() *storeGuard {
	return newStoreGuard(RetryConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  time.Second,
		Multiplier:      2.0,
	}, logging.Discard())
}

// failN returns an operation that fails n times and then succeeds.
func failN(n int, calls *int) func(context.Context) error {
	return func(context.Context) error {
		*calls++
		if *calls <= n {
			return fmt.Errorf("database is locked (attempt %d)", *calls)
		}
		return nil
	}
}

func TestGuard_TransientThenSuccess(t *testing.T) {
	g := newTestGuard()
	calls := 0

	if err := g.do(context.Background(), "save", failN(2, &calls)); err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestGuard_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	g := newTestGuard()
	calls := 0
	alwaysFail := func(context.Context) error {
		calls++
		return errors.New("disk I/O error")
	}

	err := g.do(context.Background(), "save", alwaysFail)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Expected open circuit, got %v", err)
	}
	if calls != 5 {
		t.Errorf("Expected 5 calls before the circuit opened, got %d", calls)
	}
	if g.cb.State() != gobreaker.StateOpen {
		t.Errorf("Expected StateOpen, got %v", g.cb.State())
	}

	// Open circuit rejects without calling the store.
	err = g.do(context.Background(), "save", alwaysFail)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected open circuit, got %v", err)
	}
	if calls != 5 {
		t.Errorf("Expected no further calls, got %d", calls)
	}
}

func TestGuard_PermanentErrorsNotRetriedOrCounted(t *testing.T) {
	g := newTestGuard()
	calls := 0
	notFound := func(context.Context) error {
		calls++
		return fmt.Errorf("activity X: %w", persistence.ErrNotFound)
	}

	for i := 0; i < 10; i++ {
		err := g.do(context.Background(), "delete", notFound)
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	}
	if calls != 10 {
		t.Errorf("Expected one call per operation, got %d", calls)
	}
	if g.cb.State() != gobreaker.StateClosed {
		t.Errorf("Expected circuit to stay closed, got %v", g.cb.State())
	}
}

func TestGuard_ContextCancelledStopsRetry(t *testing.T) {
	g := newTestGuard()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := g.do(ctx, "save", failN(100, &calls))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected no calls after cancellation, got %d", calls)
	}
}
