package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(windowLen time.Duration, maxRequests int) (*InMemoryLimiter, *time.Time) {
	l := NewInMemoryLimiter(windowLen, maxRequests)
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestConsumeAdmitsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 3)
	defer l.Stop()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		d, err := l.Consume(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, d.OK)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := l.Consume(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, d.OK)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Minute, d.RetryAfter)
}

func TestConsumeWindowReset(t *testing.T) {
	l, now := newTestLimiter(time.Minute, 1)
	defer l.Stop()

	ctx := context.Background()

	d, err := l.Consume(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, d.OK)

	d, err = l.Consume(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, d.OK)

	// The window lapses; the next request starts a fresh one.
	*now = now.Add(time.Minute)

	d, err = l.Consume(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, d.OK)
	assert.Equal(t, now.Add(time.Minute), d.ResetAt)
}

func TestConsumeIsolatesIdentities(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 1)
	defer l.Stop()

	ctx := context.Background()

	d, _ := l.Consume(ctx, "client-a")
	assert.True(t, d.OK)

	d, _ = l.Consume(ctx, "client-a")
	assert.False(t, d.OK)

	// A different identity has its own window.
	d, _ = l.Consume(ctx, "client-b")
	assert.True(t, d.OK)
}

func TestConsumeRetryAfterCountsDown(t *testing.T) {
	l, now := newTestLimiter(time.Minute, 1)
	defer l.Stop()

	ctx := context.Background()
	_, _ = l.Consume(ctx, "client-a")

	*now = now.Add(40 * time.Second)

	d, err := l.Consume(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, d.OK)
	assert.Equal(t, 20*time.Second, d.RetryAfter)
}
