// Package ratelimit provides a token bucket limiter used to pace API
// requests to the configured requests-per-second budget.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter implements the token bucket algorithm. Tokens refill continuously
// at the configured rate up to the burst capacity; each request consumes one
// token. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	rate     float64 // tokens per second
	burst    int
	tokens   float64
	lastTime time.Time

	now func() time.Time
}

// NewLimiter creates a Limiter admitting rate requests per second with the
// given burst capacity. The bucket starts full.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		rate:     rate,
		burst:    burst,
		tokens:   float64(burst),
		lastTime: time.Now(),
		now:      time.Now,
	}
}

// Allow reports whether a request may proceed immediately, consuming a token
// when it may.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens >= 1.0 {
		l.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.refill()

		if l.tokens >= 1.0 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}

		// Time until the deficit refills.
		deficit := 1.0 - l.tokens
		waitTime := time.Duration(deficit / l.rate * float64(time.Second))
		l.mu.Unlock()

		timer := time.NewTimer(waitTime)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Tokens returns the current token count after refill. Intended for tests
// and diagnostics.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens
}

// refill adds tokens for the time elapsed since the last refill, capped at
// the burst capacity. Caller must hold mu.
func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastTime).Seconds()

	l.tokens += elapsed * l.rate
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}

	l.lastTime = now
}
