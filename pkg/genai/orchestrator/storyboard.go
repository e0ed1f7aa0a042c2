package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/scenecraft/scenecraft/internal/perrors"
	"github.com/scenecraft/scenecraft/pkg/genai/gemini"
)

// StylePreviewCount is the exact number of previews the provider must return.
const StylePreviewCount = 4

type StoryboardRequest struct {
	Concept         string   `json:"concept"`
	Image           *Blob    `json:"image,omitempty"`
	StyleNames      []string `json:"styleNames,omitempty"`
	TemplatePrompts []string `json:"templatePrompts,omitempty"`
	SceneCount      int      `json:"sceneCount"`
	Workflow        string   `json:"workflow,omitempty"`
}

type EnhancedStoryboardRequest struct {
	Concept           string `json:"concept"`
	SceneCount        int    `json:"sceneCount"`
	Workflow          string `json:"workflow,omitempty"`
	SystemInstruction string `json:"systemInstruction,omitempty"`
}

type SceneMetadata struct {
	Duration int    `json:"duration,omitempty"`
	Mood     string `json:"mood,omitempty"`
	Shot     string `json:"shot,omitempty"`
}

type EnhancedScene struct {
	Description     string        `json:"description"`
	ImagePrompt     string        `json:"imagePrompt"`
	AnimationPrompt string        `json:"animationPrompt"`
	Metadata        SceneMetadata `json:"metadata"`
}

type StylePreview struct {
	Description    string        `json:"description"`
	ImagePrompt    string        `json:"imagePrompt"`
	StyleDirection string        `json:"styleDirection"`
	Metadata       SceneMetadata `json:"metadata"`
}

// Storyboard generates plain scene descriptions for a concept.
func (o *Orchestrator) Storyboard(ctx context.Context, r *StoryboardRequest) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.Storyboard")
	defer span.End()

	o.noteRequest(ctx, "storyboard", DefaultTextModel, r.Concept)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Break the following concept into exactly %d scene descriptions for a video storyboard. ", r.SceneCount)
	sb.WriteString(`Reply with a JSON array of strings, one description per scene, and nothing else.`)
	sb.WriteString("\n\nConcept: " + r.Concept)
	if len(r.StyleNames) > 0 {
		sb.WriteString("\nStyles: " + strings.Join(r.StyleNames, ", "))
	}
	for _, tpl := range r.TemplatePrompts {
		sb.WriteString("\n" + tpl)
	}

	parts := []gemini.Part{{Text: sb.String()}}
	if r.Image != nil {
		parts = append(parts, inlinePart(r.Image))
	}

	out, err := o.clientFor(ctx).GenerateContent(ctx, DefaultTextModel, &gemini.GenerateContentRequest{
		Contents:          []gemini.Content{{Role: "user", Parts: parts}},
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: workflowInstruction(r.Workflow)}}},
		GenerationConfig:  &gemini.GenerationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return nil, err
	}

	text, err := responseText(out, DefaultTextModel)
	if err != nil {
		return nil, err
	}

	var scenes []string
	if err := sonic.Unmarshal([]byte(text), &scenes); err != nil {
		return nil, perrors.New(perrors.ErrCodeNoOutput,
			"provider returned malformed storyboard JSON; retrying may succeed", err)
	}

	return scenes, nil
}

// EnhancedStoryboard generates scenes with image prompts, animation prompts,
// and metadata in one pass.
func (o *Orchestrator) EnhancedStoryboard(ctx context.Context, r *EnhancedStoryboardRequest) ([]EnhancedScene, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.EnhancedStoryboard")
	defer span.End()

	o.noteRequest(ctx, "enhancedStoryboard", DefaultTextModel, r.Concept)

	instruction := r.SystemInstruction
	if instruction == "" {
		instruction = workflowInstruction(r.Workflow)
	}

	prompt := fmt.Sprintf(`Break the following concept into exactly %d storyboard scenes. Reply with a JSON array where each element is {"description": string, "imagePrompt": string, "animationPrompt": string, "metadata": {"duration": seconds, "mood": string, "shot": string}} and nothing else.

Concept: %s`, r.SceneCount, r.Concept)

	out, err := o.clientFor(ctx).GenerateContent(ctx, DefaultTextModel, &gemini.GenerateContentRequest{
		Contents:          []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}}}},
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: instruction}}},
		GenerationConfig:  &gemini.GenerationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return nil, err
	}

	text, err := responseText(out, DefaultTextModel)
	if err != nil {
		return nil, err
	}

	var scenes []EnhancedScene
	if err := sonic.Unmarshal([]byte(text), &scenes); err != nil {
		return nil, perrors.New(perrors.ErrCodeNoOutput,
			"provider returned malformed storyboard JSON; retrying may succeed", err)
	}

	return scenes, nil
}

// StylePreviews generates exactly four style treatments of a concept. Any
// other count from the provider fails the request.
func (o *Orchestrator) StylePreviews(ctx context.Context, concept string, workflow string) ([]StylePreview, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.StylePreviews")
	defer span.End()

	o.noteRequest(ctx, "stylePreviews", DefaultTextModel, concept)

	prompt := fmt.Sprintf(`Propose exactly %d distinct visual style treatments for the following concept. Reply with a JSON array where each element is {"description": string, "imagePrompt": string, "styleDirection": string, "metadata": {"mood": string}} and nothing else.

Concept: %s`, StylePreviewCount, concept)

	out, err := o.clientFor(ctx).GenerateContent(ctx, DefaultTextModel, &gemini.GenerateContentRequest{
		Contents:          []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}}}},
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: workflowInstruction(workflow)}}},
		GenerationConfig:  &gemini.GenerationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return nil, err
	}

	text, err := responseText(out, DefaultTextModel)
	if err != nil {
		return nil, err
	}

	var previews []StylePreview
	if err := sonic.Unmarshal([]byte(text), &previews); err != nil {
		return nil, perrors.New(perrors.ErrCodeNoOutput,
			"provider returned malformed style preview JSON; retrying may succeed", err)
	}

	if len(previews) != StylePreviewCount {
		return nil, perrors.New(perrors.ErrCodeNoOutput,
			fmt.Sprintf("provider returned %d style previews, expected %d", len(previews), StylePreviewCount), nil)
	}

	return previews, nil
}
