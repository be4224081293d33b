package netcheck

import (
	"context"
	"math/rand"
	"time"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

// retrySleepFunc is the sleep function used between retries (injectable for tests)
var retrySleepFunc = sleepCtx

// maxJitter bounds the random component added to each backoff sleep
const maxJitter = 500 * time.Millisecond

// Retrier wraps a single link's network attempt with a bounded retry loop
// and exponential backoff with jitter.
type Retrier struct {
	maxRetries int
}

// NewRetrier creates a retrier allowing maxRetries additional attempts
// beyond the first
func NewRetrier(maxRetries int) *Retrier {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Retrier{maxRetries: maxRetries}
}

// attemptFunc performs one network attempt and reports whether its outcome
// is eligible for retry
type attemptFunc func(ctx context.Context) (outcome attemptOutcome, retryable bool)

// Run executes fn up to maxRetries+1 times, sleeping 2^attempt seconds
// plus jitter between tries. It returns the last outcome and the number of
// tries actually made.
func (r *Retrier) Run(ctx context.Context, fn attemptFunc) (attemptOutcome, int) {
	var outcome attemptOutcome
	attempts := 0

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		attempts++
		var retryable bool
		outcome, retryable = fn(ctx)
		if !retryable || attempt == r.maxRetries {
			break
		}
		backoff := time.Duration(1<<uint(attempt))*time.Second + jitter()
		if err := retrySleepFunc(ctx, backoff); err != nil {
			break
		}
	}

	return outcome, attempts
}

// retryableStatus reports whether a per-attempt status may be retried.
// TIMEOUT and generic BROKEN (5xx or connection error) are retryable;
// DNS failures, TLS errors, refusals, and policy outcomes are terminal.
func retryableStatus(status model.ValidationStatus) bool {
	return status == model.StatusTimeout || status == model.StatusBroken
}

func jitter() time.Duration {
	return time.Duration(rand.Int63n(int64(maxJitter)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
