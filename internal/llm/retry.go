package llm

import (
	"context"
	"math/rand"
	"time"

	"github.com/Eugenepoly/market-agent/pkg/types"
)

// Retrier retries an operation on transient failures with exponential
// backoff, a delay cap, and jitter. Prerequisite and permanent failures
// are returned immediately; a transient failure that exhausts the budget
// is returned as-is and surfaces as a normal agent failure.
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// Jitter is a fraction of the computed delay added randomly (0..1).
	Jitter float64
}

// NewRetrier builds a retrier with the default jitter factor.
func NewRetrier(maxRetries int, baseDelay, maxDelay time.Duration) *Retrier {
	return &Retrier{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxDelay:   maxDelay,
		Jitter:     0.5,
	}
}

// Do invokes fn until it succeeds, fails non-transiently, or the retry
// budget runs out.
func (r *Retrier) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := waitBackoff(ctx, r.backoff(attempt-1)); err != nil {
				return err
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if types.ClassifyError(lastErr) != types.ErrorKindTransient {
			return lastErr
		}
	}
	return lastErr
}

// backoff computes the delay before retry number attempt (0-indexed):
// base * 2^attempt, capped, plus jitter.
func (r *Retrier) backoff(attempt int) time.Duration {
	delay := r.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= r.MaxDelay {
			break
		}
	}
	if delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	if r.Jitter > 0 {
		delay += time.Duration(rand.Float64() * r.Jitter * float64(delay))
	}
	return delay
}

// waitBackoff sleeps for the delay or returns early on context cancellation.
func waitBackoff(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
