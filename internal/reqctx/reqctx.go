// Package reqctx carries per-request state through the handling chain.
//
// The scope rides on context.Context so every function already receiving a
// context can reach it without extra parameters, while remaining explicit:
// there is no global or goroutine-local lookup, and concurrently handled
// requests never observe each other's scope.
package reqctx

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Scope holds the identity and diagnostics of one in-flight request.
// RequestID is minted once at admission and must never be regenerated.
type Scope struct {
	RequestID string
	CallerKey string
	StartedAt time.Time

	mu   sync.Mutex
	meta map[string]string
}

// New establishes a fresh scope on ctx. callerKey is the optional per-caller
// provider credential; empty means the server fallback credential applies.
func New(ctx context.Context, callerKey string) (context.Context, *Scope) {
	s := &Scope{
		RequestID: uuid.NewString(),
		CallerKey: callerKey,
		StartedAt: time.Now(),
		meta:      map[string]string{},
	}

	return context.WithValue(ctx, ctxKey{}, s), s
}

// FromContext returns the active scope, or nil when called outside a request.
func FromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(ctxKey{}).(*Scope)
	return s
}

// RequestID returns the active request id, or "" outside a request scope.
func RequestID(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.RequestID
	}
	return ""
}

// UpdateMeta merges diagnostic fields discovered mid-handling, such as the
// target model or the prompt fingerprint.
func (s *Scope) UpdateMeta(fields map[string]string) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range fields {
		s.meta[k] = v
	}
}

// Meta returns a copy of the diagnostic fields.
func (s *Scope) Meta() map[string]string {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.meta))
	for k, v := range s.meta {
		out[k] = v
	}
	return out
}

// MetaValue returns one diagnostic field, or "" when absent.
func (s *Scope) MetaValue(key string) string {
	if s == nil {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta[key]
}
