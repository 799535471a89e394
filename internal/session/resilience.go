package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/aristath/miniplan/internal/persistence"
	"github.com/aristath/miniplan/internal/scheduler"
)

// RetryConfig configures exponential backoff for store writes.
type RetryConfig struct {
	InitialInterval     time.Duration // Initial retry interval (default 50ms)
	MaxInterval         time.Duration // Maximum retry interval (default 1s)
	MaxElapsedTime      time.Duration // Maximum total retry time (default 5s)
	Multiplier          float64       // Backoff multiplier (default 2.0)
	RandomizationFactor float64       // Jitter factor (default 0.5)
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     50 * time.Millisecond,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      5 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// storeGuard runs store operations with retry, behind a circuit breaker that
// stops hammering a database which keeps failing.
type storeGuard struct {
	cb     *gobreaker.CircuitBreaker
	retry  RetryConfig
	logger *slog.Logger
}

func newStoreGuard(retry RetryConfig, logger *slog.Logger) *storeGuard {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "store",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Only infrastructure failures count against the store
			return err == nil || isPermanent(err)
		},
	})

	return &storeGuard{cb: cb, retry: retry, logger: logger}
}

// isPermanent reports errors that retrying cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, persistence.ErrNotFound) ||
		errors.Is(err, scheduler.ErrInvalidActivity)
}

// do executes fn with exponential backoff.
func (g *storeGuard) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	operation := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		attempt++

		_, err := g.cb.Execute(func() (interface{}, error) {
			return nil, fn(ctx)
		})
		if err == nil {
			return nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		if isPermanent(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		g.logger.Debug("store operation failed, retrying", "op", op, "attempt", attempt, "err", err)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.retry.InitialInterval
	policy.MaxInterval = g.retry.MaxInterval
	policy.MaxElapsedTime = g.retry.MaxElapsedTime
	if g.retry.Multiplier > 0 {
		policy.Multiplier = g.retry.Multiplier
	}
	policy.RandomizationFactor = g.retry.RandomizationFactor

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}
