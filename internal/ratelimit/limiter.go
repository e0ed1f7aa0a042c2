package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one admission check. Rejection is a first-class
// value, not an error.
type Decision struct {
	OK         bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter admits or rejects requests per client identity using a fixed time
// window. Burst-at-window-boundary is an accepted tradeoff for bounded memory.
type Limiter interface {
	Consume(ctx context.Context, identity string) (Decision, error)
}

type window struct {
	start time.Time
	count int
}

// InMemoryLimiter implements Limiter with per-identity windows in a map.
// A background goroutine removes lapsed windows.
type InMemoryLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	windowLen   time.Duration
	maxRequests int
	cleanup     *time.Ticker
	stopCleanup chan struct{}

	// test seam; defaults to time.Now
	now func() time.Time
}

// NewInMemoryLimiter creates a limiter admitting maxRequests per windowLen
// per identity. It starts a background cleanup goroutine; call Stop when
// shutting down.
func NewInMemoryLimiter(windowLen time.Duration, maxRequests int) *InMemoryLimiter {
	l := &InMemoryLimiter{
		windows:     make(map[string]*window),
		windowLen:   windowLen,
		maxRequests: maxRequests,
		cleanup:     time.NewTicker(5 * time.Minute),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}

	go l.cleanupLapsedWindows()

	return l
}

// Stop stops the background cleanup goroutine.
func (l *InMemoryLimiter) Stop() {
	l.cleanup.Stop()
	close(l.stopCleanup)
}

// Consume registers one request for identity and reports whether it is
// admitted. Never returns an error; the error is part of the Limiter
// interface for the Redis implementation.
func (l *InMemoryLimiter) Consume(_ context.Context, identity string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, exists := l.windows[identity]
	if !exists || now.Sub(w.start) >= l.windowLen {
		w = &window{start: now, count: 0}
		l.windows[identity] = w
	}

	w.count++
	resetAt := w.start.Add(l.windowLen)

	remaining := l.maxRequests - w.count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		OK:         w.count <= l.maxRequests,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: resetAt.Sub(now),
	}, nil
}

func (l *InMemoryLimiter) cleanupLapsedWindows() {
	for {
		select {
		case <-l.cleanup.C:
			l.mu.Lock()
			now := l.now()
			for identity, w := range l.windows {
				if now.Sub(w.start) >= l.windowLen {
					delete(l.windows, identity)
				}
			}
			l.mu.Unlock()
		case <-l.stopCleanup:
			return
		}
	}
}
