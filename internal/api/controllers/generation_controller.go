package controllers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/internal/reqctx"
	"github.com/scenecraft/scenecraft/internal/services"
	"github.com/scenecraft/scenecraft/internal/services/asset"
	"github.com/scenecraft/scenecraft/internal/services/project"
	"github.com/scenecraft/scenecraft/internal/services/scene"
	"github.com/scenecraft/scenecraft/internal/services/styletemplate"
	"github.com/scenecraft/scenecraft/internal/telemetry"
	"github.com/scenecraft/scenecraft/internal/utils"
	"github.com/scenecraft/scenecraft/pkg/genai/orchestrator"
)

var tracer = otel.Tracer("Controllers")

type generationController struct {
	svc *services.Services
}

// RegisterGenerationRoutes mounts every generation endpoint under the given
// group. Each handler follows the same shape: admit, parse, orchestrate, emit.
func RegisterGenerationRoutes(r *router.Group, svc *services.Services) {
	c := &generationController{svc: svc}

	r.Handle(http.MethodPost, "/chat", c.chat)
	r.Handle(http.MethodPost, "/chat/stream", c.chatStream)
	r.Handle(http.MethodPost, "/storyboard", c.storyboard)
	r.Handle(http.MethodPost, "/storyboard/enhanced", c.enhancedStoryboard)
	r.Handle(http.MethodPost, "/style-previews", c.stylePreviews)
	r.Handle(http.MethodPost, "/description/regenerate", c.regenerateDescription)
	r.Handle(http.MethodPost, "/image", c.generateImage)
	r.Handle(http.MethodPost, "/image/edit", c.editImage)
	r.Handle(http.MethodPost, "/image/edit-prompt", c.imageEditPrompt)
	r.Handle(http.MethodPost, "/video-prompt", c.videoPrompt)
	r.Handle(http.MethodPost, "/video", c.generateVideo)
	r.Handle(http.MethodPost, "/video/extend", c.extendVideo)
}

// admit runs admission control and establishes the request scope. The request
// id is minted before the limiter runs, so rejections carry it too. When the
// caller is rejected the 429 response has already been written.
func (c *generationController) admit(reqCtx *fasthttp.RequestCtx, endpoint string) (context.Context, bool) {
	ctx, scope := reqctx.New(requestContext(reqCtx), callerKey(reqCtx))

	decision, err := c.svc.Limiter.Consume(ctx, clientIdentity(reqCtx))
	if err != nil {
		// Admission must not depend on limiter availability; admit and log.
		slog.WarnContext(ctx, "Rate limiter unavailable, admitting request", slog.Any("error", err))
	} else if !decision.OK {
		retryAfterSecs := int(decision.RetryAfter.Seconds())
		if retryAfterSecs < 1 {
			retryAfterSecs = 1
		}
		reqCtx.Response.Header.Set("Retry-After", strconv.Itoa(retryAfterSecs))
		reqCtx.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		c.svc.Telemetry.Emit(ctx, telemetry.Event{
			RequestID: scope.RequestID,
			Endpoint:  endpoint,
			Status:    "rejected",
			ErrorCode: perrors.ErrCodeRateLimited.Code,
			Retryable: true,
		})
		perr := perrors.NewErrRateLimited(decision.RetryAfter.Milliseconds(), decision.Remaining).(perrors.Err)
		writeError(reqCtx, ctx, "Rate limit exceeded", perr.WithRequestID(scope.RequestID))
		return nil, false
	}

	return ctx, true
}

// finish emits the completion event and writes the terminal response. Every
// error leaving the gateway carries the request id minted at admission.
func (c *generationController) finish(reqCtx *fasthttp.RequestCtx, ctx context.Context, endpoint, okMsg string, data any, err error) {
	if err != nil {
		var perr perrors.Err
		if !errors.As(err, &perr) {
			perr = perrors.NewErrInternalServerError(okMsg, err).(perrors.Err)
		}
		perr = perr.WithRequestID(reqctx.RequestID(ctx))

		c.svc.Telemetry.EmitCompletion(ctx, endpoint, "error", perr.ErrorCode, perr.Retryable)
		writeError(reqCtx, ctx, perr.Message, perr)
		return
	}

	c.svc.Telemetry.EmitCompletion(ctx, endpoint, "success", "", false)
	writeOK(reqCtx, ctx, okMsg, data)
}

func (c *generationController) invalid(reqCtx *fasthttp.RequestCtx, ctx context.Context, endpoint, msg string, err error) {
	c.finish(reqCtx, ctx, endpoint, msg, nil, perrors.NewErrInvalidRequest(msg, err))
}

func (c *generationController) chat(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "chat")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.Chat")
	defer span.End()

	var body orchestrator.ChatRequest
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "chat", "Invalid request body", err)
		return
	}
	if body.Prompt == "" {
		c.invalid(reqCtx, ctx, "chat", "Prompt is required", errors.New("prompt is required"))
		return
	}

	text, err := c.svc.Orchestrator.Chat(ctx, &body)
	c.finish(reqCtx, ctx, "chat", "Chat completed", map[string]string{"text": text, "requestId": reqctx.RequestID(ctx)}, err)
}

func (c *generationController) chatStream(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "chat_stream")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.ChatStream")

	var body orchestrator.ChatRequest
	if err := parseBody(reqCtx, &body); err != nil {
		span.End()
		c.invalid(reqCtx, ctx, "chat_stream", "Invalid request body", err)
		return
	}
	if body.Prompt == "" {
		span.End()
		c.invalid(reqCtx, ctx, "chat_stream", "Prompt is required", errors.New("prompt is required"))
		return
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := c.svc.Orchestrator.ChatStream(streamCtx, &body)
	if err != nil {
		cancel()
		span.End()
		c.finish(reqCtx, ctx, "chat_stream", "Failed to start stream", nil, err)
		return
	}

	reqCtx.Response.Header.Set("Content-Type", "text/event-stream")
	reqCtx.Response.Header.Set("Cache-Control", "no-cache")
	reqCtx.Response.Header.Set("X-Request-Id", reqctx.RequestID(ctx))

	reqCtx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer span.End()
		// Cancelling unblocks the producer goroutine and closes the provider
		// connection whether the stream drained fully or the client went away.
		defer cancel()

		for chunk := range stream {
			buf, err := sonic.Marshal(chunk)
			if err != nil {
				slog.WarnContext(ctx, "Error encoding stream chunk", slog.Any("error", err))
				continue
			}

			_, _ = fmt.Fprintf(w, "data: %s\n\n", buf)
			if err := w.Flush(); err != nil {
				// Client went away; stop consuming so the provider stream is
				// not drained for nobody.
				return
			}
		}

		_, _ = fmt.Fprint(w, "event: done\ndata: {}\n\n")
		_ = w.Flush()

		c.svc.Telemetry.EmitCompletion(ctx, "chat_stream", "success", "", false)
	})
}

type storyboardBody struct {
	orchestrator.StoryboardRequest
	TemplateID *uuid.UUID `json:"templateId,omitempty"`
}

func (c *generationController) storyboard(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "storyboard")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.Storyboard")
	defer span.End()

	var body storyboardBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "storyboard", "Invalid request body", err)
		return
	}
	if body.Concept == "" {
		c.invalid(reqCtx, ctx, "storyboard", "Concept is required", errors.New("concept is required"))
		return
	}
	if body.SceneCount <= 0 {
		body.SceneCount = 5
	}

	if body.TemplateID != nil {
		tpl, err := c.svc.StyleTemplate.GetByID(ctx, *body.TemplateID)
		if err != nil {
			if errors.Is(err, styletemplate.ErrStyleTemplateNotFound) {
				c.finish(reqCtx, ctx, "storyboard", "Style template not found", nil,
					perrors.New(perrors.ErrCodeNotFound, "Style template not found", err))
				return
			}
			c.finish(reqCtx, ctx, "storyboard", "Failed to load style template", nil, err)
			return
		}
		body.TemplatePrompts = append(body.TemplatePrompts, tpl.Prompts...)
	}

	scenes, err := c.svc.Orchestrator.Storyboard(ctx, &body.StoryboardRequest)
	c.finish(reqCtx, ctx, "storyboard", "Storyboard generated", scenes, err)
}

type enhancedStoryboardBody struct {
	orchestrator.EnhancedStoryboardRequest
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
}

func (c *generationController) enhancedStoryboard(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "enhanced_storyboard")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.EnhancedStoryboard")
	defer span.End()

	var body enhancedStoryboardBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "enhanced_storyboard", "Invalid request body", err)
		return
	}
	if body.Concept == "" {
		c.invalid(reqCtx, ctx, "enhanced_storyboard", "Concept is required", errors.New("concept is required"))
		return
	}
	if body.SceneCount <= 0 {
		body.SceneCount = 5
	}

	// Persisting into a project is optional; verify the target up front so a
	// bad project id fails before the provider is called.
	if body.ProjectID != nil {
		if _, err := c.svc.Project.GetByID(ctx, *body.ProjectID); err != nil {
			if errors.Is(err, project.ErrProjectNotFound) {
				c.finish(reqCtx, ctx, "enhanced_storyboard", "Project not found", nil,
					perrors.New(perrors.ErrCodeProjectNotFound, "Project not found", err))
				return
			}
			c.finish(reqCtx, ctx, "enhanced_storyboard", "Failed to load project", nil, err)
			return
		}
	}

	scenes, err := c.svc.Orchestrator.EnhancedStoryboard(ctx, &body.EnhancedStoryboardRequest)
	if err != nil {
		c.finish(reqCtx, ctx, "enhanced_storyboard", "Failed to generate storyboard", nil, err)
		return
	}

	if body.ProjectID != nil {
		for i, sc := range scenes {
			created := &scene.CreateSceneRequest{
				ProjectID:       *body.ProjectID,
				Position:        i,
				Description:     sc.Description,
				ImagePrompt:     utils.Ptr(sc.ImagePrompt),
				AnimationPrompt: utils.Ptr(sc.AnimationPrompt),
			}
			if sc.Metadata.Duration > 0 {
				created.DurationSeconds = utils.Ptr(sc.Metadata.Duration)
			}
			if _, err := c.svc.Scene.Create(ctx, created); err != nil {
				c.finish(reqCtx, ctx, "enhanced_storyboard", "Failed to persist storyboard scenes", nil, err)
				return
			}
		}
	}

	c.finish(reqCtx, ctx, "enhanced_storyboard", "Storyboard generated", scenes, nil)
}

type stylePreviewBody struct {
	Concept  string `json:"concept"`
	Workflow string `json:"workflow,omitempty"`
}

func (c *generationController) stylePreviews(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "style_previews")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.StylePreviews")
	defer span.End()

	var body stylePreviewBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "style_previews", "Invalid request body", err)
		return
	}
	if body.Concept == "" {
		c.invalid(reqCtx, ctx, "style_previews", "Concept is required", errors.New("concept is required"))
		return
	}

	previews, err := c.svc.Orchestrator.StylePreviews(ctx, body.Concept, body.Workflow)
	c.finish(reqCtx, ctx, "style_previews", "Style previews generated", previews, err)
}

type regenerateBody struct {
	SceneID     *uuid.UUID `json:"sceneId,omitempty"`
	Description string     `json:"description,omitempty"`
}

func (c *generationController) regenerateDescription(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "regenerate_description")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.RegenerateDescription")
	defer span.End()

	var body regenerateBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "regenerate_description", "Invalid request body", err)
		return
	}

	existing := body.Description
	if body.SceneID != nil {
		sc, err := c.svc.Scene.GetByID(ctx, *body.SceneID)
		if err != nil {
			if errors.Is(err, scene.ErrSceneNotFound) {
				c.finish(reqCtx, ctx, "regenerate_description", "Scene not found", nil,
					perrors.New(perrors.ErrCodeSceneNotFound, "Scene not found", err))
				return
			}
			c.finish(reqCtx, ctx, "regenerate_description", "Failed to load scene", nil, err)
			return
		}
		existing = sc.Description
	}
	if existing == "" {
		c.invalid(reqCtx, ctx, "regenerate_description", "Description or sceneId is required", errors.New("nothing to regenerate"))
		return
	}

	rewritten, err := c.svc.Orchestrator.RegenerateDescription(ctx, existing)
	if err != nil {
		c.finish(reqCtx, ctx, "regenerate_description", "Failed to regenerate description", nil, err)
		return
	}

	if body.SceneID != nil {
		if _, err := c.svc.Scene.Update(ctx, *body.SceneID, &scene.UpdateSceneRequest{Description: &rewritten}); err != nil {
			c.finish(reqCtx, ctx, "regenerate_description", "Failed to save regenerated description", nil, err)
			return
		}
	}

	c.finish(reqCtx, ctx, "regenerate_description", "Description regenerated", map[string]string{"description": rewritten}, nil)
}

type imageBody struct {
	orchestrator.ImageRequest
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
	SceneID   *uuid.UUID `json:"sceneId,omitempty"`
}

func (c *generationController) generateImage(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "generate_image")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.GenerateImage")
	defer span.End()

	var body imageBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "generate_image", "Invalid request body", err)
		return
	}
	if body.Description == "" {
		c.invalid(reqCtx, ctx, "generate_image", "Description is required", errors.New("description is required"))
		return
	}

	blob, err := c.svc.Orchestrator.GenerateImage(ctx, &body.ImageRequest)
	if err != nil {
		c.finish(reqCtx, ctx, "generate_image", "Failed to generate image", nil, err)
		return
	}

	stored, err := c.persistBlob(ctx, body.ProjectID, body.SceneID, asset.KindImage, blob.MimeType, blob.Data, nil)
	if err != nil {
		c.finish(reqCtx, ctx, "generate_image", "Failed to store image", nil, err)
		return
	}

	c.finish(reqCtx, ctx, "generate_image", "Image generated", imageResult(blob, stored), nil)
}

type editImageBody struct {
	SceneID *uuid.UUID         `json:"sceneId,omitempty"`
	Image   *orchestrator.Blob `json:"image,omitempty"`
	Prompt  string             `json:"prompt"`
}

func (c *generationController) editImage(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "edit_image")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.EditImage")
	defer span.End()

	var body editImageBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "edit_image", "Invalid request body", err)
		return
	}
	if body.Prompt == "" {
		c.invalid(reqCtx, ctx, "edit_image", "Prompt is required", errors.New("prompt is required"))
		return
	}

	image := body.Image
	var sceneProject *uuid.UUID
	if image == nil && body.SceneID != nil {
		sc, blob, err := c.sceneImage(ctx, *body.SceneID)
		if err != nil {
			c.finish(reqCtx, ctx, "edit_image", "Failed to load scene image", nil, err)
			return
		}
		image = blob
		sceneProject = &sc.ProjectID
	}
	if image == nil {
		c.invalid(reqCtx, ctx, "edit_image", "Image or sceneId is required", errors.New("no image to edit"))
		return
	}

	edited, err := c.svc.Orchestrator.EditImage(ctx, image, body.Prompt)
	if err != nil {
		c.finish(reqCtx, ctx, "edit_image", "Failed to edit image", nil, err)
		return
	}

	stored, err := c.persistBlob(ctx, sceneProject, body.SceneID, asset.KindImage, edited.MimeType, edited.Data, nil)
	if err != nil {
		c.finish(reqCtx, ctx, "edit_image", "Failed to store edited image", nil, err)
		return
	}

	c.finish(reqCtx, ctx, "edit_image", "Image edited", imageResult(edited, stored), nil)
}

type editPromptBody struct {
	SceneID     *uuid.UUID         `json:"sceneId,omitempty"`
	Description string             `json:"description,omitempty"`
	Image       *orchestrator.Blob `json:"image,omitempty"`
}

func (c *generationController) imageEditPrompt(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "image_edit_prompt")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.ImageEditPrompt")
	defer span.End()

	var body editPromptBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "image_edit_prompt", "Invalid request body", err)
		return
	}

	description, image, err := c.resolveSceneInput(ctx, body.SceneID, body.Description, body.Image)
	if err != nil {
		c.finish(reqCtx, ctx, "image_edit_prompt", "Failed to resolve scene input", nil, err)
		return
	}

	prompt, err := c.svc.Orchestrator.ImageEditPrompt(ctx, description, image)
	c.finish(reqCtx, ctx, "image_edit_prompt", "Edit prompt generated", map[string]string{"prompt": prompt}, err)
}

func (c *generationController) videoPrompt(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "video_prompt")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.VideoPrompt")
	defer span.End()

	var body editPromptBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "video_prompt", "Invalid request body", err)
		return
	}

	description, image, err := c.resolveSceneInput(ctx, body.SceneID, body.Description, body.Image)
	if err != nil {
		c.finish(reqCtx, ctx, "video_prompt", "Failed to resolve scene input", nil, err)
		return
	}

	prompt, err := c.svc.Orchestrator.VideoPrompt(ctx, description, image)
	if err != nil {
		c.finish(reqCtx, ctx, "video_prompt", "Failed to generate animation prompt", nil, err)
		return
	}

	if body.SceneID != nil {
		if _, err := c.svc.Scene.Update(ctx, *body.SceneID, &scene.UpdateSceneRequest{AnimationPrompt: &prompt}); err != nil {
			c.finish(reqCtx, ctx, "video_prompt", "Failed to save animation prompt", nil, err)
			return
		}
	}

	c.finish(reqCtx, ctx, "video_prompt", "Animation prompt generated", map[string]string{"prompt": prompt}, nil)
}

type videoBody struct {
	orchestrator.VideoRequest
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
	SceneID   *uuid.UUID `json:"sceneId,omitempty"`
}

func (c *generationController) generateVideo(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "generate_video")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.GenerateVideo")
	defer span.End()

	var body videoBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "generate_video", "Invalid request body", err)
		return
	}
	if body.Prompt == "" {
		c.invalid(reqCtx, ctx, "generate_video", "Prompt is required", errors.New("prompt is required"))
		return
	}
	if body.Model == "" {
		c.invalid(reqCtx, ctx, "generate_video", "Model is required", errors.New("model is required"))
		return
	}

	// A scene without an image cannot seed image-to-video generation.
	if body.Image == nil && body.SceneID != nil {
		_, blob, err := c.sceneImage(ctx, *body.SceneID)
		if err != nil {
			c.finish(reqCtx, ctx, "generate_video", "Failed to load scene image", nil, err)
			return
		}
		body.Image = blob
	}

	result, err := c.svc.Orchestrator.GenerateVideo(ctx, &body.VideoRequest)
	if err != nil {
		c.finish(reqCtx, ctx, "generate_video", "Failed to generate video", nil, err)
		return
	}

	stored, err := c.persistBlob(ctx, body.ProjectID, body.SceneID, asset.KindVideo, result.MimeType, result.Data, utils.Ptr(result.Metadata.DurationSeconds))
	if err != nil {
		c.finish(reqCtx, ctx, "generate_video", "Failed to store video", nil, err)
		return
	}

	c.finish(reqCtx, ctx, "generate_video", "Video generated", videoResultPayload(result, stored), nil)
}

type extendVideoBody struct {
	orchestrator.ExtendVideoRequest
	AssetID   *uuid.UUID `json:"assetId,omitempty"`
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
	SceneID   *uuid.UUID `json:"sceneId,omitempty"`
}

func (c *generationController) extendVideo(reqCtx *fasthttp.RequestCtx) {
	ctx, ok := c.admit(reqCtx, "extend_video")
	if !ok {
		return
	}

	ctx, span := tracer.Start(ctx, "Controller.ExtendVideo")
	defer span.End()

	var body extendVideoBody
	if err := parseBody(reqCtx, &body); err != nil {
		c.invalid(reqCtx, ctx, "extend_video", "Invalid request body", err)
		return
	}
	if body.Model == "" {
		c.invalid(reqCtx, ctx, "extend_video", "Model is required", errors.New("model is required"))
		return
	}

	if body.Video == nil && body.AssetID != nil {
		stored, data, err := c.svc.Asset.Open(ctx, *body.AssetID)
		if err != nil {
			if errors.Is(err, asset.ErrAssetNotFound) {
				c.finish(reqCtx, ctx, "extend_video", "Asset not found", nil,
					perrors.New(perrors.ErrCodeAssetNotFound, "Asset not found", err))
				return
			}
			c.finish(reqCtx, ctx, "extend_video", "Failed to load asset", nil, err)
			return
		}
		body.Video = &orchestrator.Blob{Data: data, MimeType: stored.MimeType}
		if body.CurrentDurationSeconds == 0 && stored.DurationSeconds != nil {
			body.CurrentDurationSeconds = *stored.DurationSeconds
		}
		if body.ProjectID == nil {
			body.ProjectID = &stored.ProjectID
		}
	}
	if body.Video == nil {
		c.invalid(reqCtx, ctx, "extend_video", "Video or assetId is required", errors.New("no video to extend"))
		return
	}

	result, err := c.svc.Orchestrator.ExtendVideo(ctx, &body.ExtendVideoRequest)
	if err != nil {
		c.finish(reqCtx, ctx, "extend_video", "Failed to extend video", nil, err)
		return
	}

	stored, err := c.persistBlob(ctx, body.ProjectID, body.SceneID, asset.KindVideo, result.MimeType, result.Data, utils.Ptr(result.Metadata.DurationSeconds))
	if err != nil {
		c.finish(reqCtx, ctx, "extend_video", "Failed to store extended video", nil, err)
		return
	}

	c.finish(reqCtx, ctx, "extend_video", "Video extended", videoResultPayload(result, stored), nil)
}

// sceneImage loads the scene and its current still frame. A scene without an
// image asset is reported as SCENE_IMAGE_MISSING, distinct from a missing
// scene.
func (c *generationController) sceneImage(ctx context.Context, sceneID uuid.UUID) (*scene.Scene, *orchestrator.Blob, error) {
	sc, err := c.svc.Scene.GetByID(ctx, sceneID)
	if err != nil {
		if errors.Is(err, scene.ErrSceneNotFound) {
			return nil, nil, perrors.New(perrors.ErrCodeSceneNotFound, "Scene not found", err)
		}
		return nil, nil, err
	}

	if sc.ImageAssetID == nil {
		return nil, nil, perrors.New(perrors.ErrCodeSceneImageMissing,
			"Scene has no generated image yet", fmt.Errorf("scene %s has no image asset", sceneID))
	}

	stored, data, err := c.svc.Asset.Open(ctx, *sc.ImageAssetID)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			return nil, nil, perrors.New(perrors.ErrCodeAssetNotFound, "Scene image asset not found", err)
		}
		return nil, nil, err
	}

	return sc, &orchestrator.Blob{Data: data, MimeType: stored.MimeType}, nil
}

// resolveSceneInput resolves the description/image pair either from the
// request body or from the referenced scene.
func (c *generationController) resolveSceneInput(ctx context.Context, sceneID *uuid.UUID, description string, image *orchestrator.Blob) (string, *orchestrator.Blob, error) {
	if sceneID != nil {
		sc, blob, err := c.sceneImage(ctx, *sceneID)
		if err != nil {
			return "", nil, err
		}
		if description == "" {
			description = sc.Description
		}
		if image == nil {
			image = blob
		}
	}

	if description == "" {
		return "", nil, perrors.NewErrInvalidRequest("Description or sceneId is required", errors.New("no description"))
	}
	if image == nil {
		return "", nil, perrors.NewErrInvalidRequest("Image or sceneId is required", errors.New("no image"))
	}

	return description, image, nil
}

// persistBlob stores a generated artifact when a project is given and links it
// to the scene. Without a project id the artifact is returned inline only.
func (c *generationController) persistBlob(ctx context.Context, projectID, sceneID *uuid.UUID, kind asset.AssetKind, mimeType string, data []byte, durationSeconds *int) (*asset.Asset, error) {
	if projectID == nil {
		return nil, nil
	}

	if _, err := c.svc.Project.GetByID(ctx, *projectID); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return nil, perrors.New(perrors.ErrCodeProjectNotFound, "Project not found", err)
		}
		return nil, err
	}

	stored, err := c.svc.Asset.Store(ctx, &asset.CreateAssetRequest{
		ProjectID:       *projectID,
		SceneID:         sceneID,
		Kind:            kind,
		MimeType:        mimeType,
		DurationSeconds: durationSeconds,
	}, data)
	if err != nil {
		return nil, err
	}

	if sceneID != nil {
		update := &scene.UpdateSceneRequest{}
		if kind == asset.KindImage {
			update.ImageAssetID = &stored.ID
		} else {
			update.VideoAssetID = &stored.ID
			update.DurationSeconds = durationSeconds
		}
		if _, err := c.svc.Scene.Update(ctx, *sceneID, update); err != nil {
			return nil, err
		}
	}

	return stored, nil
}

func imageResult(blob *orchestrator.Blob, stored *asset.Asset) map[string]any {
	out := map[string]any{"image": blob}
	if stored != nil {
		out["assetId"] = stored.ID
	}
	return out
}

func videoResultPayload(result *orchestrator.VideoResult, stored *asset.Asset) map[string]any {
	out := map[string]any{
		"video":    orchestrator.Blob{Data: result.Data, MimeType: result.MimeType},
		"metadata": result.Metadata,
	}
	if stored != nil {
		out["assetId"] = stored.ID
	}
	return out
}
