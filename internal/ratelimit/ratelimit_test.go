package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told, making refill math deterministic.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rate float64, burst int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := NewLimiter(rate, burst)
	l.now = clock.now
	l.lastTime = clock.t
	l.tokens = float64(burst)
	return l, clock
}

func TestAllowConsumesBurst(t *testing.T) {
	l, _ := newTestLimiter(10, 3)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "bucket must be empty after the burst is consumed")
}

func TestRefillRestoresTokens(t *testing.T) {
	l, clock := newTestLimiter(10, 3)

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow())
	}
	require.False(t, l.Allow())

	// 10 tokens/s for 100ms refills exactly one token.
	clock.advance(100 * time.Millisecond)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestRefillCappedAtBurst(t *testing.T) {
	l, clock := newTestLimiter(100, 5)

	clock.advance(time.Hour)
	assert.InDelta(t, 5.0, l.Tokens(), 0.0001, "tokens must never exceed the burst capacity")
}

func TestWaitReturnsImmediatelyWithTokens(t *testing.T) {
	l, _ := newTestLimiter(1, 1)

	start := time.Now()
	err := l.Wait(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWaitBlocksUntilRefill(t *testing.T) {
	// Real clock here: Wait sleeps on the wall clock.
	l := NewLimiter(100, 1)

	require.True(t, l.Allow())

	start := time.Now()
	err := l.Wait(context.Background())
	require.NoError(t, err)

	elapsed := time.Since(start)
	// One token at 100/s refills in ~10ms.
	assert.Less(t, elapsed, 2*time.Second, "Wait should unblock once a token refills")
}

func TestWaitCancelled(t *testing.T) {
	// Rate so slow the refill cannot complete during the test.
	l := NewLimiter(0.001, 1)
	require.True(t, l.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Wait(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}

func TestConcurrentAllow(t *testing.T) {
	l, _ := newTestLimiter(1, 100)

	results := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		go func() { results <- l.Allow() }()
	}

	allowed := 0
	for i := 0; i < 200; i++ {
		if <-results {
			allowed++
		}
	}
	assert.Equal(t, 100, allowed, "exactly the burst capacity may be admitted")
}
