package reqctx

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDIsStable(t *testing.T) {
	ctx, scope := New(context.Background(), "")
	require.NotEmpty(t, scope.RequestID)

	// The same id must be observed everywhere downstream.
	for i := 0; i < 5; i++ {
		assert.Equal(t, scope.RequestID, RequestID(ctx))
	}
}

func TestScopesAreIsolated(t *testing.T) {
	ctx1, s1 := New(context.Background(), "key-1")
	ctx2, s2 := New(context.Background(), "key-2")

	assert.NotEqual(t, s1.RequestID, s2.RequestID)
	assert.Equal(t, "key-1", FromContext(ctx1).CallerKey)
	assert.Equal(t, "key-2", FromContext(ctx2).CallerKey)
}

func TestFromContextOutsideRequest(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	assert.Empty(t, RequestID(context.Background()))

	// Nil scope methods are safe to call from helpers that run outside a
	// request, like startup code.
	var s *Scope
	s.UpdateMeta(map[string]string{"k": "v"})
	assert.Empty(t, s.MetaValue("k"))
	assert.Nil(t, s.Meta())
}

func TestUpdateMetaConcurrent(t *testing.T) {
	_, scope := New(context.Background(), "")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scope.UpdateMeta(map[string]string{"model": "veo-3.1-generate-preview"})
		}()
	}
	wg.Wait()

	assert.Equal(t, "veo-3.1-generate-preview", scope.MetaValue("model"))
}
