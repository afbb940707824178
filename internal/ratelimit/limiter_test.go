package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurstThenThrottle(t *testing.T) {
	l := New()

	// The bucket starts full: three requests pass without blocking.
	for i := 0; i < DefaultBurst; i++ {
		assert.True(t, l.Allow("api.example.org"), "request %d should be within burst", i+1)
	}

	// The fourth needs a refill.
	assert.False(t, l.Allow("api.example.org"))
}

func TestHostsDoNotContend(t *testing.T) {
	l := New()

	for i := 0; i < DefaultBurst; i++ {
		require.True(t, l.Allow("a.example.org"))
	}
	require.False(t, l.Allow("a.example.org"))

	// A different host at the same instant has its own full bucket.
	assert.True(t, l.Allow("b.example.org"))
}

func TestFourthRequestWaitsForRefill(t *testing.T) {
	l := New()
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < DefaultBurst; i++ {
		require.NoError(t, l.Wait(ctx, "c.example.org"))
	}
	require.Less(t, time.Since(start), 200*time.Millisecond, "burst must not block")

	// The fourth waits roughly one refill interval (1 token/sec).
	require.NoError(t, l.Wait(ctx, "c.example.org"))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 700*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	l := NewWithRate(0.001, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Wait(ctx, "d.example.org"))

	err := l.Wait(ctx, "d.example.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "d.example.org")
}
