package orchestrator

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/internal/reqctx"
	"github.com/scenecraft/scenecraft/pkg/genai/capabilities"
	"github.com/scenecraft/scenecraft/pkg/genai/gemini"
)

// JobState tracks a long-running video job through its state machine:
// Submitted → Polling → (Succeeded | FailedNoResult | FailedDownload),
// with Timeout terminating the poll loop when the wall-clock budget elapses.
type JobState string

const (
	JobSubmitted      JobState = "submitted"
	JobPolling        JobState = "polling"
	JobSucceeded      JobState = "succeeded"
	JobFailedNoResult JobState = "failed_no_result"
	JobFailedDownload JobState = "failed_download"
	JobTimedOut       JobState = "timed_out"
)

// GenerationJob is one long-running provider operation.
type GenerationJob struct {
	ProviderHandle string
	State          JobState
	ResultURI      string
}

type VideoRequest struct {
	Image           *Blob                     `json:"image,omitempty"`
	Prompt          string                    `json:"prompt"`
	Model           string                    `json:"model"`
	AspectRatio     capabilities.AspectRatio  `json:"aspectRatio"`
	Resolution      *capabilities.Resolution  `json:"resolution,omitempty"`
	ReferenceImages []*Blob                   `json:"referenceImages,omitempty"`
	LastFrame       *Blob                     `json:"lastFrame,omitempty"`
	DurationSeconds *int                      `json:"duration,omitempty"`
}

type VideoMetadata struct {
	Model           string `json:"model"`
	AspectRatio     string `json:"aspectRatio"`
	Resolution      string `json:"resolution,omitempty"`
	DurationSeconds int    `json:"durationSeconds"`
}

type VideoResult struct {
	Data     []byte        `json:"data"`
	MimeType string        `json:"mimeType"`
	Metadata VideoMetadata `json:"metadata"`
}

type ExtendVideoRequest struct {
	Video                  *Blob                    `json:"video"`
	Prompt                 string                   `json:"prompt"`
	Model                  string                   `json:"model"`
	AspectRatio            capabilities.AspectRatio `json:"aspectRatio"`
	ExtensionCount         int                      `json:"extensionCount"`
	CurrentDurationSeconds int                      `json:"currentDuration"`
}

// GenerateVideo validates the request against the capability matrix, submits
// one generation job, and drives it to completion.
func (o *Orchestrator) GenerateVideo(ctx context.Context, r *VideoRequest) (*VideoResult, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.GenerateVideo")
	defer span.End()

	o.noteRequest(ctx, "generateVideo", r.Model, r.Prompt)

	// All applicable validators run before any paid external call.
	if err := capabilities.ValidateResolution(r.Model, r.Resolution, r.AspectRatio, r.DurationSeconds); err != nil {
		return nil, err
	}
	if err := capabilities.ValidateReferenceImages(r.Model, len(r.ReferenceImages), r.AspectRatio); err != nil {
		return nil, err
	}
	if err := capabilities.ValidateLastFrame(r.Model, r.LastFrame != nil, r.Image != nil); err != nil {
		return nil, err
	}

	// Resolve the final resolution. A model without resolution support gets
	// no resolution field at all, not a default.
	finalResolution := r.Resolution
	if finalResolution == nil {
		def, ok, err := capabilities.GetDefaultResolution(r.Model, r.AspectRatio)
		if err != nil {
			return nil, err
		}
		if ok {
			finalResolution = &def
		}
	}

	duration := r.DurationSeconds
	if duration == nil {
		d, err := capabilities.GetDefaultDuration(r.Model, capabilities.DurationInput{
			Resolution:         finalResolution,
			HasReferenceImages: len(r.ReferenceImages) > 0,
			HasLastFrame:       r.LastFrame != nil,
		})
		if err != nil {
			return nil, err
		}
		duration = &d
	}

	instance := gemini.VideoInstance{Prompt: r.Prompt}
	if r.Image != nil {
		instance.Image = videoImage(r.Image)
	}
	if r.LastFrame != nil {
		instance.LastFrame = videoImage(r.LastFrame)
	}
	for _, ref := range r.ReferenceImages {
		instance.ReferenceImages = append(instance.ReferenceImages, gemini.VideoReference{
			Image:         videoImage(ref),
			ReferenceType: "asset",
		})
	}

	params := &gemini.VideoParameters{
		AspectRatio:     string(r.AspectRatio),
		DurationSeconds: duration,
	}
	if finalResolution != nil {
		params.Resolution = string(*finalResolution)
	}

	data, mimeType, err := o.runVideoJob(ctx, r.Model, &gemini.PredictLongRunningRequest{
		Instances:  []gemini.VideoInstance{instance},
		Parameters: params,
	})
	if err != nil {
		return nil, err
	}

	meta := VideoMetadata{
		Model:           r.Model,
		AspectRatio:     string(r.AspectRatio),
		DurationSeconds: *duration,
	}
	if finalResolution != nil {
		meta.Resolution = string(*finalResolution)
	}

	return &VideoResult{Data: data, MimeType: mimeType, Metadata: meta}, nil
}

// ExtendVideo appends ExtensionCount * 7 seconds by chaining sequential
// single-extension jobs; extension i's output video becomes extension i+1's
// input. A mid-chain failure aborts the remaining extensions and reports the
// failing index along with the duration computed so far.
func (o *Orchestrator) ExtendVideo(ctx context.Context, r *ExtendVideoRequest) (*VideoResult, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.ExtendVideo")
	defer span.End()

	o.noteRequest(ctx, "extendVideo", r.Model, r.Prompt)

	if err := capabilities.ValidateVideoExtension(r.Model, r.CurrentDurationSeconds, r.ExtensionCount); err != nil {
		return nil, err
	}

	current := r.Video
	duration := r.CurrentDurationSeconds

	for i := 1; i <= r.ExtensionCount; i++ {
		span.SetAttributes(attribute.Int("extension.index", i))

		data, mimeType, err := o.runVideoJob(ctx, r.Model, &gemini.PredictLongRunningRequest{
			Instances: []gemini.VideoInstance{{
				Prompt: r.Prompt,
				Video: &gemini.Video{
					BytesBase64Encoded: base64.StdEncoding.EncodeToString(current.Data),
					MimeType:           current.MimeType,
				},
			}},
			Parameters: &gemini.VideoParameters{AspectRatio: string(r.AspectRatio)},
		})
		if err != nil {
			var perr perrors.Err
			if e, ok := err.(perrors.Err); ok {
				perr = e
			} else {
				perr = perrors.NewErrInternalServerError("video extension failed", err).(perrors.Err)
			}
			perr.Message = fmt.Sprintf("extension %d of %d failed (duration so far: %ds)", i, r.ExtensionCount, duration)
			perr.Args = append(perr.Args, map[string]interface{}{
				"failed_extension_index": i,
				"completed_duration":     duration,
			})
			return nil, perr
		}

		current = &Blob{Data: data, MimeType: mimeType}
		duration += capabilities.SecondsPerExtension
	}

	return &VideoResult{
		Data:     current.Data,
		MimeType: current.MimeType,
		Metadata: VideoMetadata{
			Model:           r.Model,
			AspectRatio:     string(r.AspectRatio),
			DurationSeconds: duration,
		},
	}, nil
}

// runVideoJob drives one provider job through the state machine: submit,
// poll at a fixed interval until done or the wall-clock budget elapses, then
// download the result.
func (o *Orchestrator) runVideoJob(ctx context.Context, model string, in *gemini.PredictLongRunningRequest) ([]byte, string, error) {
	span := trace.SpanFromContext(ctx)
	client := o.clientFor(ctx)

	op, err := client.PredictLongRunning(ctx, model, in)
	if err != nil {
		return nil, "", err
	}

	job := &GenerationJob{ProviderHandle: op.Name, State: JobSubmitted}
	span.SetAttributes(attribute.String("job.handle", job.ProviderHandle))

	deadline := time.Now().Add(o.pollTimeout)
	job.State = JobPolling

	for !op.Done {
		if time.Now().After(deadline) {
			job.State = JobTimedOut
			e := perrors.New(perrors.ErrCodeUpstreamTimeout,
				fmt.Sprintf("video job %s did not finish within %s; resubmitting is safe but the original job may still complete and consume quota", job.ProviderHandle, o.pollTimeout), nil,
				map[string]interface{}{"handle": job.ProviderHandle, "request_id": reqctx.RequestID(ctx)}).(perrors.Err)
			return nil, "", e
		}

		// Fixed-interval wait; yields the goroutine, observes cancellation.
		timer := time.NewTimer(o.pollInterval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, "", perrors.New(perrors.ErrCodeUpstreamTimeout, "video job polling cancelled", ctx.Err())
		}

		op, err = client.GetOperation(ctx, model, job.ProviderHandle)
		if err != nil {
			return nil, "", err
		}
	}

	uri := op.ResultURI()
	if uri == "" {
		job.State = JobFailedNoResult
		return nil, "", perrors.New(perrors.ErrCodeNoOutput,
			"video job finished without a result; the provider likely hit a transient failure, retrying may succeed", nil,
			map[string]interface{}{"handle": job.ProviderHandle})
	}

	job.State = JobSucceeded
	job.ResultURI = uri

	data, mimeType, err := client.DownloadFile(ctx, uri)
	if err != nil {
		job.State = JobFailedDownload
		return nil, "", err
	}

	span.SetAttributes(attribute.Int("video.bytes", len(data)))

	return data, mimeType, nil
}

func videoImage(b *Blob) *gemini.VideoImage {
	return &gemini.VideoImage{
		BytesBase64Encoded: base64.StdEncoding.EncodeToString(b.Data),
		MimeType:           b.MimeType,
	}
}
