package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/internal/reqctx"
	"github.com/scenecraft/scenecraft/pkg/genai/gemini"
)

func textResponse(t *testing.T, text string) []byte {
	t.Helper()

	buf, err := sonic.Marshal(&gemini.GenerateContentResponse{
		Candidates: []gemini.Candidate{{Content: &gemini.Content{
			Role:  "model",
			Parts: []gemini.Part{{Text: text}},
		}}},
	})
	require.NoError(t, err)
	return buf
}

func newTextServer(t *testing.T, handler http.HandlerFunc) *Orchestrator {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Options{
		ServerKey: "server-key",
		BaseURL:   srv.URL,
		Transport: srv.Client(),
	})
}

func TestChatReturnsText(t *testing.T) {
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(textResponse(t, "hello there"))
	})

	out, err := o.Chat(context.Background(), &ChatRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
}

func TestChatEmptyResponseIsNoOutput(t *testing.T) {
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := o.Chat(context.Background(), &ChatRequest{Prompt: "hi"})

	perr := errCode(t, err)
	assert.Equal(t, perrors.ErrCodeNoOutput.Code, perr.ErrorCode)
	assert.True(t, perr.Retryable)
}

func TestChatRecordsScopeMeta(t *testing.T) {
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(textResponse(t, "ok"))
	})

	ctx, scope := reqctx.New(context.Background(), "")
	_, err := o.Chat(ctx, &ChatRequest{Prompt: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", scope.MetaValue("model"))
	assert.Len(t, scope.MetaValue("prompt_fingerprint"), 16)
	assert.Equal(t, "chat", scope.MetaValue("entry_point"))
}

func TestCallerCredentialIsUsedAndNeverCached(t *testing.T) {
	var seenKeys []string
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		seenKeys = append(seenKeys, r.Header.Get("x-goog-api-key"))
		_, _ = w.Write(textResponse(t, "ok"))
	})

	// No scope: the server fallback credential applies.
	_, err := o.Chat(context.Background(), &ChatRequest{Prompt: "hi"})
	require.NoError(t, err)

	// Caller credentials must be honored per request, in any order.
	for _, key := range []string{"caller-a", "caller-b", "caller-a"} {
		ctx, _ := reqctx.New(context.Background(), key)
		_, err := o.Chat(ctx, &ChatRequest{Prompt: "hi"})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"server-key", "caller-a", "caller-b", "caller-a"}, seenKeys)
}

func TestServerKeyClientIsReused(t *testing.T) {
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(textResponse(t, "ok"))
	})

	first := o.clientFor(context.Background())
	second := o.clientFor(context.Background())
	assert.Same(t, first, second)

	// A caller credential always gets a fresh client and leaves the cached
	// server-key client untouched.
	ctx, _ := reqctx.New(context.Background(), "caller-a")
	assert.NotSame(t, first, o.clientFor(ctx))
	assert.Same(t, first, o.clientFor(context.Background()))
}

func TestStylePreviewsRejectsWrongCount(t *testing.T) {
	previews := `[{"description":"a","imagePrompt":"b","styleDirection":"c","metadata":{"mood":"calm"}},
		{"description":"d","imagePrompt":"e","styleDirection":"f","metadata":{"mood":"dark"}},
		{"description":"g","imagePrompt":"h","styleDirection":"i","metadata":{"mood":"warm"}}]`

	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(textResponse(t, previews))
	})

	_, err := o.StylePreviews(context.Background(), "a fox in snow", "")

	perr := errCode(t, err)
	assert.Equal(t, perrors.ErrCodeNoOutput.Code, perr.ErrorCode)
	assert.Contains(t, perr.Message, "3 style previews, expected 4")
}

func TestStoryboardParsesSceneList(t *testing.T) {
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(textResponse(t, `["scene one","scene two","scene three"]`))
	})

	scenes, err := o.Storyboard(context.Background(), &StoryboardRequest{
		Concept:    "a fox in snow",
		SceneCount: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"scene one", "scene two", "scene three"}, scenes)
}

func TestUpstreamErrorClassification(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		wantCode string
		wantRetr bool
	}{
		{"server failure is transient", http.StatusInternalServerError, perrors.ErrCodeUpstreamTransient.Code, true},
		{"throttling is transient", http.StatusTooManyRequests, perrors.ErrCodeUpstreamTransient.Code, true},
		{"bad request is permanent", http.StatusBadRequest, perrors.ErrCodeUpstreamPermanent.Code, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprintf(w, `{"error":{"code":%d,"message":"nope","status":"ERR"}}`, tc.status)
			})

			_, err := o.Chat(context.Background(), &ChatRequest{Prompt: "hi"})

			perr := errCode(t, err)
			assert.Equal(t, tc.wantCode, perr.ErrorCode)
			assert.Equal(t, tc.wantRetr, perr.Retryable)
		})
	}
}

func TestChatStreamDeliversChunksInOrder(t *testing.T) {
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		for _, text := range []string{"once ", "upon ", "a time"} {
			fmt.Fprintf(w, "data: %s\n\n", textResponse(t, text))
			flusher.Flush()
		}
	})

	stream, err := o.ChatStream(context.Background(), &ChatRequest{Prompt: "hi"})
	require.NoError(t, err)

	var got []string
	for chunk := range stream {
		got = append(got, chunk)
	}
	assert.Equal(t, []string{"once ", "upon ", "a time"}, got)
}

func TestChatStreamIgnoresNonDataLines(t *testing.T) {
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		// Only the data-prefixed payload may be delivered; bare JSON lines,
		// event markers, and comments are framing, not chunks.
		fmt.Fprintf(w, "%s\n", textResponse(t, "smuggled"))
		fmt.Fprint(w, "event: ping\n")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprintf(w, "data: %s\n\n", textResponse(t, "delivered"))
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
		flusher.Flush()
	})

	stream, err := o.ChatStream(context.Background(), &ChatRequest{Prompt: "hi"})
	require.NoError(t, err)

	var got []string
	for chunk := range stream {
		got = append(got, chunk)
	}
	assert.Equal(t, []string{"delivered"}, got)
}

func TestChatStreamCancelReleasesProviderConnection(t *testing.T) {
	providerDone := make(chan struct{})
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		for i := 0; i < 50; i++ {
			fmt.Fprintf(w, "data: %s\n\n", textResponse(t, "chunk"))
		}
		flusher.Flush()

		<-r.Context().Done()
		close(providerDone)
	})

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := o.ChatStream(ctx, &ChatRequest{Prompt: "hi"})
	require.NoError(t, err)

	// Receive one chunk, then stop draining the channel the way a handler
	// does when its HTTP client disconnects: cancel and walk away.
	_, ok := <-stream
	require.True(t, ok)
	cancel()

	select {
	case <-providerDone:
	case <-time.After(time.Second):
		t.Fatal("provider connection stayed open after the consumer went away")
	}
}

func TestChatStreamStopsOnCancellation(t *testing.T) {
	release := make(chan struct{})
	o := newTextServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		fmt.Fprintf(w, "data: %s\n\n", textResponse(t, "first"))
		flusher.Flush()

		// Hold the connection open until the client goes away.
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := o.ChatStream(ctx, &ChatRequest{Prompt: "hi"})
	require.NoError(t, err)

	first, ok := <-stream
	require.True(t, ok)
	assert.Equal(t, "first", first)

	cancel()

	select {
	case _, ok := <-stream:
		assert.False(t, ok, "stream must close after cancellation")
	case <-time.After(time.Second):
		t.Fatal("stream did not close after cancellation")
	}
}
