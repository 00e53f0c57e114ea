// Package retry provides bounded retries with deterministic exponential
// backoff for extraction operations.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/deftunes/goextract/internal/logger"
)

// SleepFunc suspends the caller for d or until ctx is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy executes a fallible operation up to MaxAttempts times, sleeping
// BaseDelay × Multiplier^attempt between attempts. The schedule is strictly
// geometric with no jitter and no cap, so the delays for a 3-attempt policy
// with BaseDelay=1s and Multiplier=2 are exactly 1s then 2s.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64

	// Logger receives the per-attempt warning and final error lines.
	// Defaults to logger.NewDefault when nil.
	Logger *logger.Logger

	// Sleep suspends the calling goroutine between attempts. Defaults to a
	// context-aware sleep when nil; tests inject a recorder here to observe
	// exact delays without waiting.
	Sleep SleepFunc
}

// New creates a Policy with the given bounds.
func New(maxAttempts int, baseDelay time.Duration, multiplier float64, log *logger.Logger) *Policy {
	return &Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Multiplier:  multiplier,
		Logger:      log,
	}
}

// Do runs fn until it succeeds or MaxAttempts is exhausted. The first
// success returns immediately with no further sleeps. Every failed attempt
// that will be retried logs a warning with the computed delay; the final
// failure logs an error and returns the operation's last error unchanged,
// so callers see the original error kind, not a wrapper.
//
// A context cancellation during the backoff sleep aborts the remaining
// attempts and is the only case where Do returns an error fn did not
// produce.
func (p *Policy) Do(ctx context.Context, name string, fn func() error) error {
	log := p.Logger
	if log == nil {
		log = logger.NewDefault()
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = waitContext
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.DelayFor(attempt)
		log.Warnf("Attempt %d/%d failed for %s: %v. Retrying in %s...",
			attempt+1, p.MaxAttempts, name, err, delay)

		if serr := sleep(ctx, delay); serr != nil {
			return fmt.Errorf("retry of %s cancelled: %w", name, serr)
		}
	}

	log.Errorf("%s failed after %d attempts: %v", name, p.MaxAttempts, lastErr)
	return lastErr
}

// DelayFor returns the backoff delay scheduled after the given 0-based
// attempt index.
func (p *Policy) DelayFor(attempt int) time.Duration {
	return time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt)))
}

// waitContext sleeps for d unless ctx is cancelled first.
func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
