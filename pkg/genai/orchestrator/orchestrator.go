// Package orchestrator translates validated generation requests into provider
// calls and normalizes the results. It is the only place the provider client
// is constructed.
package orchestrator

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/internal/reqctx"
	"github.com/scenecraft/scenecraft/internal/utils"
	"github.com/scenecraft/scenecraft/pkg/genai/gemini"
)

var tracer = otel.Tracer("Orchestrator")

const (
	// DefaultTextModel handles chat, storyboard text, and prompt rewriting.
	DefaultTextModel = "gemini-2.5-flash"

	// DefaultImageModel handles image generation and editing.
	DefaultImageModel = "gemini-2.5-flash-image"
)

type Options struct {
	// ServerKey is the process-wide fallback credential, used when the
	// request scope carries no caller credential.
	ServerKey string

	BaseURL      string
	PollInterval time.Duration
	PollTimeout  time.Duration
	Transport    *http.Client
}

type Orchestrator struct {
	serverKey    string
	baseURL      string
	pollInterval time.Duration
	pollTimeout  time.Duration
	transport    *http.Client
	cache        *clientCache
}

func New(opts Options) *Orchestrator {
	if opts.PollInterval == 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.PollTimeout == 0 {
		opts.PollTimeout = 10 * time.Minute
	}

	return &Orchestrator{
		serverKey:    opts.ServerKey,
		baseURL:      opts.BaseURL,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		transport:    opts.Transport,
		cache:        newClientCache(opts.BaseURL, opts.Transport),
	}
}

// clientFor resolves the provider client for this request. A caller-supplied
// credential must never be cached or reused across requests.
func (o *Orchestrator) clientFor(ctx context.Context) *gemini.Client {
	if scope := reqctx.FromContext(ctx); scope != nil && scope.CallerKey != "" {
		return gemini.NewClient(&gemini.ClientOptions{
			BaseURL:   o.baseURL,
			ApiKey:    scope.CallerKey,
			Transport: o.transport,
		})
	}

	return o.cache.get(o.serverKey)
}

// Blob is a binary payload with its mime type.
type Blob struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mimeType"`
}

type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type ChatRequest struct {
	Prompt       string        `json:"prompt"`
	History      []ChatMessage `json:"history,omitempty"`
	Image        *Blob         `json:"image,omitempty"`
	Model        string        `json:"model,omitempty"`
	Workflow     string        `json:"workflow,omitempty"`
	ThinkingMode bool          `json:"thinkingMode,omitempty"`
}

func (r *ChatRequest) model() string {
	if r.Model != "" {
		return r.Model
	}
	return DefaultTextModel
}

func (r *ChatRequest) toWire() *gemini.GenerateContentRequest {
	var contents []gemini.Content
	for _, msg := range r.History {
		role := msg.Role
		if role != "user" {
			role = "model"
		}
		contents = append(contents, gemini.Content{Role: role, Parts: []gemini.Part{{Text: msg.Text}}})
	}

	parts := []gemini.Part{{Text: r.Prompt}}
	if r.Image != nil {
		parts = append(parts, inlinePart(r.Image))
	}
	contents = append(contents, gemini.Content{Role: "user", Parts: parts})

	wire := &gemini.GenerateContentRequest{Contents: contents}
	if r.Workflow != "" {
		wire.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: workflowInstruction(r.Workflow)}}}
	}
	if !r.ThinkingMode {
		wire.GenerationConfig = &gemini.GenerationConfig{ThinkingConfig: &gemini.ThinkingConfig{ThinkingBudget: 0}}
	}

	return wire
}

// Chat runs a single-turn (plus history) text exchange.
func (o *Orchestrator) Chat(ctx context.Context, r *ChatRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.Chat")
	defer span.End()

	model := r.model()
	o.noteRequest(ctx, "chat", model, r.Prompt)

	out, err := o.clientFor(ctx).GenerateContent(ctx, model, r.toWire())
	if err != nil {
		return "", err
	}

	return responseText(out, model)
}

// ChatStream returns a lazily-consumed, finite, non-restartable sequence of
// text chunks. Cancelling ctx stops the provider stream; no further chunks
// are requested after cancellation.
func (o *Orchestrator) ChatStream(ctx context.Context, r *ChatRequest) (chan string, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.ChatStream")
	defer span.End()

	model := r.model()
	o.noteRequest(ctx, "chatStream", model, r.Prompt)

	return o.clientFor(ctx).StreamGenerateContent(ctx, model, r.toWire())
}

// RegenerateDescription rewrites an existing scene description with fresh
// wording while preserving its content.
func (o *Orchestrator) RegenerateDescription(ctx context.Context, existing string) (string, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.RegenerateDescription")
	defer span.End()

	o.noteRequest(ctx, "regenerateDescription", DefaultTextModel, existing)

	prompt := "Rewrite the following scene description with fresh, vivid wording. Keep the subject, setting, and action identical. Reply with the rewritten description only.\n\n" + existing

	out, err := o.clientFor(ctx).GenerateContent(ctx, DefaultTextModel, &gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	return responseText(out, DefaultTextModel)
}

// ImageEditPrompt derives an image-editing instruction from a scene
// description and the current image.
func (o *Orchestrator) ImageEditPrompt(ctx context.Context, description string, image *Blob) (string, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.ImageEditPrompt")
	defer span.End()

	o.noteRequest(ctx, "imageEditPrompt", DefaultTextModel, description)

	prompt := "Given this scene description and the attached current frame, write a single concise instruction for an image editing model that would bring the frame in line with the description. Reply with the instruction only.\n\nDescription: " + description

	out, err := o.clientFor(ctx).GenerateContent(ctx, DefaultTextModel, &gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}, inlinePart(image)}}},
	})
	if err != nil {
		return "", err
	}

	return responseText(out, DefaultTextModel)
}

// VideoPrompt derives an animation prompt from a scene description and its
// still image.
func (o *Orchestrator) VideoPrompt(ctx context.Context, description string, image *Blob) (string, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.VideoPrompt")
	defer span.End()

	o.noteRequest(ctx, "videoPrompt", DefaultTextModel, description)

	prompt := "Given this scene description and the attached still frame, write a single cinematic animation prompt describing camera movement and motion within the scene. Reply with the prompt only.\n\nDescription: " + description

	out, err := o.clientFor(ctx).GenerateContent(ctx, DefaultTextModel, &gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}, inlinePart(image)}}},
	})
	if err != nil {
		return "", err
	}

	return responseText(out, DefaultTextModel)
}

type ImageRequest struct {
	Description  string   `json:"description"`
	AspectRatio  string   `json:"aspectRatio,omitempty"`
	StylePrompts []string `json:"stylePrompts,omitempty"`
	Model        string   `json:"model,omitempty"`
	Workflow     string   `json:"workflow,omitempty"`
	ThinkingMode bool     `json:"thinkingMode,omitempty"`
}

// GenerateImage renders a still frame for a scene description.
func (o *Orchestrator) GenerateImage(ctx context.Context, r *ImageRequest) (*Blob, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.GenerateImage")
	defer span.End()

	model := r.Model
	if model == "" {
		model = DefaultImageModel
	}
	o.noteRequest(ctx, "generateImage", model, r.Description)

	prompt := r.Description
	for _, style := range r.StylePrompts {
		prompt += "\n" + style
	}
	if r.AspectRatio != "" {
		prompt += "\nAspect ratio: " + r.AspectRatio
	}

	out, err := o.clientFor(ctx).GenerateContent(ctx, model, &gemini.GenerateContentRequest{
		Contents:         []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}}}},
		GenerationConfig: &gemini.GenerationConfig{ResponseModality: []string{"IMAGE"}},
	})
	if err != nil {
		return nil, err
	}

	return responseImage(out, model)
}

// EditImage applies an edit instruction to an existing image.
func (o *Orchestrator) EditImage(ctx context.Context, image *Blob, prompt string) (*Blob, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.EditImage")
	defer span.End()

	o.noteRequest(ctx, "editImage", DefaultImageModel, prompt)

	out, err := o.clientFor(ctx).GenerateContent(ctx, DefaultImageModel, &gemini.GenerateContentRequest{
		Contents:         []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}, inlinePart(image)}}},
		GenerationConfig: &gemini.GenerationConfig{ResponseModality: []string{"IMAGE"}},
	})
	if err != nil {
		return nil, err
	}

	return responseImage(out, DefaultImageModel)
}

// noteRequest attaches diagnostics to the request scope as they become known.
func (o *Orchestrator) noteRequest(ctx context.Context, entryPoint, model, prompt string) {
	reqctx.FromContext(ctx).UpdateMeta(map[string]string{
		"entry_point":        entryPoint,
		"model":              model,
		"prompt_fingerprint": utils.PromptFingerprint(prompt),
	})
}

// responseText unwraps the first candidate's text. A successful response with
// no text is a retryable no-output error, distinct from validation failures:
// it is typically a transient provider-side content-safety block.
func responseText(out *gemini.GenerateContentResponse, model string) (string, error) {
	var text string
	if out != nil {
		for _, cand := range out.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if !part.Thought {
					text += part.Text
				}
			}
			break
		}
	}

	if text == "" {
		return "", perrors.New(perrors.ErrCodeNoOutput,
			"provider returned no text output; a reworded prompt may succeed", nil,
			map[string]interface{}{"model": model})
	}

	return text, nil
}

// responseImage unwraps the first inline image from a response.
func responseImage(out *gemini.GenerateContentResponse, model string) (*Blob, error) {
	if out != nil {
		for _, cand := range out.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part.InlineData != nil && part.InlineData.Data != "" {
					data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
					if err != nil {
						return nil, perrors.NewErrInternalServerError("failed to decode inline image data", err)
					}
					return &Blob{Data: data, MimeType: part.InlineData.MimeType}, nil
				}
			}
		}
	}

	return nil, perrors.New(perrors.ErrCodeNoOutput,
		"provider returned no inline image; a reworded prompt may succeed", nil,
		map[string]interface{}{"model": model})
}

func inlinePart(b *Blob) gemini.Part {
	return gemini.Part{InlineData: &gemini.InlineData{
		MimeType: b.MimeType,
		Data:     base64.StdEncoding.EncodeToString(b.Data),
	}}
}

func workflowInstruction(workflow string) string {
	switch workflow {
	case "storyboard":
		return "You are a storyboard assistant for a video production tool. Answer concisely and stay within the user's creative direction."
	case "script":
		return "You are a script-writing assistant for a video production tool. Answer concisely and stay within the user's creative direction."
	default:
		return "You are a creative assistant for a video production tool."
	}
}
