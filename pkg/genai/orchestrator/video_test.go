package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/pkg/genai/capabilities"
)

// fakeVeo is an in-process stand-in for the provider's long-running video API.
type fakeVeo struct {
	srv *httptest.Server

	predictCalls atomic.Int64
	pollCalls    atomic.Int64

	// pollsUntilDone is how many poll responses report done=false before the
	// operation completes. Negative means the operation never completes.
	pollsUntilDone int64

	// withResult controls whether the finished operation carries a video URI.
	withResult bool

	// failPredictFrom makes the Nth and later predict calls return HTTP 500.
	failPredictFrom int64

	// failDownload makes the file download return HTTP 500.
	failDownload bool
}

func newFakeVeo(t *testing.T) *fakeVeo {
	t.Helper()

	f := &fakeVeo{pollsUntilDone: 0, withResult: true}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeVeo) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.Contains(r.URL.Path, ":predictLongRunning"):
		n := f.predictCalls.Add(1)
		if f.failPredictFrom > 0 && n >= f.failPredictFrom {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"code":500,"message":"backend failure","status":"INTERNAL"}}`)
			return
		}
		fmt.Fprintf(w, `{"name":"operations/op-%d","done":false}`, n)

	case strings.HasPrefix(r.URL.Path, "/operations/"):
		n := f.pollCalls.Add(1)
		if f.pollsUntilDone < 0 || n <= f.pollsUntilDone {
			fmt.Fprintf(w, `{"name":"%s","done":false}`, strings.TrimPrefix(r.URL.Path, "/"))
			return
		}
		if !f.withResult {
			fmt.Fprintf(w, `{"name":"%s","done":true}`, strings.TrimPrefix(r.URL.Path, "/"))
			return
		}
		fmt.Fprintf(w, `{"name":"%s","done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"%s/files/result"}}]}}}`,
			strings.TrimPrefix(r.URL.Path, "/"), f.srv.URL)

	case strings.HasPrefix(r.URL.Path, "/files/"):
		if f.failDownload {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("fake-video-bytes"))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeVeo) orchestrator() *Orchestrator {
	return New(Options{
		ServerKey:    "server-key",
		BaseURL:      f.srv.URL,
		PollInterval: 2 * time.Millisecond,
		PollTimeout:  time.Second,
		Transport:    f.srv.Client(),
	})
}

func errCode(t *testing.T, err error) perrors.Err {
	t.Helper()
	require.Error(t, err)

	var perr perrors.Err
	require.True(t, errors.As(err, &perr))
	return perr
}

func TestGenerateVideoSuccess(t *testing.T) {
	f := newFakeVeo(t)
	f.pollsUntilDone = 2

	out, err := f.orchestrator().GenerateVideo(context.Background(), &VideoRequest{
		Prompt:      "a fox runs through snow",
		Model:       "veo-3.1-generate-preview",
		AspectRatio: capabilities.AspectRatio16x9,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("fake-video-bytes"), out.Data)
	assert.Equal(t, "video/mp4", out.MimeType)

	// Defaults: the maximum resolution applies and forces the 8s duration.
	assert.Equal(t, "1080p", out.Metadata.Resolution)
	assert.Equal(t, 8, out.Metadata.DurationSeconds)

	assert.Equal(t, int64(1), f.predictCalls.Load())
	assert.Equal(t, int64(3), f.pollCalls.Load())
}

func TestGenerateVideoLegacyModelOmitsResolution(t *testing.T) {
	f := newFakeVeo(t)

	out, err := f.orchestrator().GenerateVideo(context.Background(), &VideoRequest{
		Prompt:      "a fox runs through snow",
		Model:       "veo-2.0-generate-001",
		AspectRatio: capabilities.AspectRatio16x9,
	})
	require.NoError(t, err)

	assert.Empty(t, out.Metadata.Resolution)
	assert.Equal(t, 6, out.Metadata.DurationSeconds)
}

func TestGenerateVideoValidationRunsBeforeSubmission(t *testing.T) {
	f := newFakeVeo(t)

	res := capabilities.Resolution1080p
	six := 6
	_, err := f.orchestrator().GenerateVideo(context.Background(), &VideoRequest{
		Prompt:          "a fox runs through snow",
		Model:           "veo-3.1-generate-preview",
		AspectRatio:     capabilities.AspectRatio16x9,
		Resolution:      &res,
		DurationSeconds: &six,
	})

	perr := errCode(t, err)
	assert.Equal(t, perrors.ErrCodeParameterValidation.Code, perr.ErrorCode)
	assert.Equal(t, int64(0), f.predictCalls.Load(), "no provider call before validation passes")
}

func TestGenerateVideoPollTimeout(t *testing.T) {
	f := newFakeVeo(t)
	f.pollsUntilDone = -1

	o := New(Options{
		ServerKey:    "server-key",
		BaseURL:      f.srv.URL,
		PollInterval: 2 * time.Millisecond,
		PollTimeout:  20 * time.Millisecond,
		Transport:    f.srv.Client(),
	})

	_, err := o.GenerateVideo(context.Background(), &VideoRequest{
		Prompt:      "a fox runs through snow",
		Model:       "veo-3.1-generate-preview",
		AspectRatio: capabilities.AspectRatio16x9,
	})

	perr := errCode(t, err)
	assert.Equal(t, perrors.ErrCodeUpstreamTimeout.Code, perr.ErrorCode)
	assert.True(t, perr.Retryable)
	assert.Contains(t, perr.Message, "may still complete and consume quota")
}

func TestGenerateVideoFinishedWithoutResult(t *testing.T) {
	f := newFakeVeo(t)
	f.withResult = false

	_, err := f.orchestrator().GenerateVideo(context.Background(), &VideoRequest{
		Prompt:      "a fox runs through snow",
		Model:       "veo-3.1-generate-preview",
		AspectRatio: capabilities.AspectRatio16x9,
	})

	perr := errCode(t, err)
	assert.Equal(t, perrors.ErrCodeNoOutput.Code, perr.ErrorCode)
	assert.True(t, perr.Retryable)
}

func TestGenerateVideoDownloadFailure(t *testing.T) {
	f := newFakeVeo(t)
	f.failDownload = true

	_, err := f.orchestrator().GenerateVideo(context.Background(), &VideoRequest{
		Prompt:      "a fox runs through snow",
		Model:       "veo-3.1-generate-preview",
		AspectRatio: capabilities.AspectRatio16x9,
	})

	perr := errCode(t, err)
	assert.Equal(t, perrors.ErrCodeUpstreamTransient.Code, perr.ErrorCode)
}

func TestExtendVideoChainsJobs(t *testing.T) {
	f := newFakeVeo(t)

	out, err := f.orchestrator().ExtendVideo(context.Background(), &ExtendVideoRequest{
		Video:                  &Blob{Data: []byte("seed"), MimeType: "video/mp4"},
		Prompt:                 "keep running",
		Model:                  "veo-3.1-generate-preview",
		AspectRatio:            capabilities.AspectRatio16x9,
		ExtensionCount:         2,
		CurrentDurationSeconds: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), f.predictCalls.Load(), "one job per extension")
	assert.Equal(t, 8+2*capabilities.SecondsPerExtension, out.Metadata.DurationSeconds)
	assert.Equal(t, []byte("fake-video-bytes"), out.Data)
}

func TestExtendVideoMidChainFailure(t *testing.T) {
	f := newFakeVeo(t)
	f.failPredictFrom = 2

	_, err := f.orchestrator().ExtendVideo(context.Background(), &ExtendVideoRequest{
		Video:                  &Blob{Data: []byte("seed"), MimeType: "video/mp4"},
		Prompt:                 "keep running",
		Model:                  "veo-3.1-generate-preview",
		AspectRatio:            capabilities.AspectRatio16x9,
		ExtensionCount:         3,
		CurrentDurationSeconds: 8,
	})

	perr := errCode(t, err)
	assert.Contains(t, perr.Message, "extension 2 of 3 failed")

	var details map[string]interface{}
	for _, args := range perr.Args {
		if _, ok := args["failed_extension_index"]; ok {
			details = args
		}
	}
	require.NotNil(t, details)
	assert.Equal(t, 2, details["failed_extension_index"])
	assert.Equal(t, 8+capabilities.SecondsPerExtension, details["completed_duration"])
}

func TestExtendVideoRejectsOverCeiling(t *testing.T) {
	f := newFakeVeo(t)

	_, err := f.orchestrator().ExtendVideo(context.Background(), &ExtendVideoRequest{
		Video:                  &Blob{Data: []byte("seed"), MimeType: "video/mp4"},
		Prompt:                 "keep running",
		Model:                  "veo-3.1-generate-preview",
		AspectRatio:            capabilities.AspectRatio16x9,
		ExtensionCount:         2,
		CurrentDurationSeconds: 135,
	})

	perr := errCode(t, err)
	assert.Equal(t, perrors.ErrCodeParameterValidation.Code, perr.ErrorCode)
	assert.Equal(t, "reduce extension count to 1", perr.SuggestedAction)
	assert.Equal(t, int64(0), f.predictCalls.Load())
}

func TestGenerateVideoCancellation(t *testing.T) {
	f := newFakeVeo(t)
	f.pollsUntilDone = -1

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.orchestrator().GenerateVideo(ctx, &VideoRequest{
			Prompt:      "a fox runs through snow",
			Model:       "veo-3.1-generate-preview",
			AspectRatio: capabilities.AspectRatio16x9,
		})
		done <- err
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("cancellation did not stop the poll loop")
	}
}
