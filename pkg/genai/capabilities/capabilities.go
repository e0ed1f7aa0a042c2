// Package capabilities holds the static per-model feature matrix for the
// video generation models and the pure functions that compute defaults and
// validate parameter combinations against it.
//
// Every model referenced by a request must have an entry here; absence is a
// fatal validation error, never a silent default.
package capabilities

import (
	"fmt"
	"sort"
)

type AspectRatio string

const (
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
)

type Resolution string

const (
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
)

const (
	// MaxReferenceImages is the provider's cap on reference images per request.
	MaxReferenceImages = 3

	// ReferenceImageAspectRatio is the only aspect ratio reference images are
	// accepted with.
	ReferenceImageAspectRatio = AspectRatio16x9

	// SecondsPerExtension is how many seconds one extension job appends.
	SecondsPerExtension = 7

	// ExtensionInputCeilingSeconds is the longest video that may still be
	// extended (pre-flight guard).
	ExtensionInputCeilingSeconds = 141

	// ExtensionResultCeilingSeconds is the hard cap on the projected final
	// duration (post-projection guard). Kept separate from the input ceiling:
	// they guard different failure moments.
	ExtensionResultCeilingSeconds = 148

	MinExtensionCount = 1
	MaxExtensionCount = 20
)

// ModelCapabilities describes what one video model accepts.
type ModelCapabilities struct {
	// SupportsResolution is false for models that take no resolution
	// parameter at all; requests for them must omit the field entirely.
	SupportsResolution bool

	// Resolutions lists supported resolutions per aspect ratio, ascending.
	Resolutions map[AspectRatio][]Resolution

	// Durations lists the accepted duration seconds per (aspect ratio,
	// resolution) pair. For models without resolution support the inner key
	// is the empty Resolution.
	Durations map[AspectRatio]map[Resolution][]int

	SupportsReferenceImages bool
	SupportsLastFrame       bool
	SupportsExtension       bool
}

var matrix = map[string]ModelCapabilities{
	"veo-3.1-generate-preview": {
		SupportsResolution: true,
		Resolutions: map[AspectRatio][]Resolution{
			AspectRatio16x9: {Resolution720p, Resolution1080p},
			AspectRatio9x16: {Resolution720p, Resolution1080p},
		},
		Durations: map[AspectRatio]map[Resolution][]int{
			AspectRatio16x9: {
				Resolution720p:  {4, 6, 8},
				Resolution1080p: {8},
			},
			AspectRatio9x16: {
				Resolution720p:  {4, 6, 8},
				Resolution1080p: {8},
			},
		},
		SupportsReferenceImages: true,
		SupportsLastFrame:       true,
		SupportsExtension:       true,
	},
	"veo-3.1-fast-generate-preview": {
		SupportsResolution: true,
		Resolutions: map[AspectRatio][]Resolution{
			AspectRatio16x9: {Resolution720p, Resolution1080p},
			AspectRatio9x16: {Resolution720p, Resolution1080p},
		},
		Durations: map[AspectRatio]map[Resolution][]int{
			AspectRatio16x9: {
				Resolution720p:  {4, 6, 8},
				Resolution1080p: {8},
			},
			AspectRatio9x16: {
				Resolution720p:  {4, 6, 8},
				Resolution1080p: {8},
			},
		},
		SupportsReferenceImages: true,
		SupportsLastFrame:       true,
		SupportsExtension:       true,
	},
	"veo-2.0-generate-001": {
		// Veo 2.0 takes no resolution parameter; the field must be omitted.
		SupportsResolution: false,
		Durations: map[AspectRatio]map[Resolution][]int{
			AspectRatio16x9: {"": {5, 6, 7, 8}},
			AspectRatio9x16: {"": {5, 6, 7, 8}},
		},
		SupportsReferenceImages: false,
		SupportsLastFrame:       false,
		SupportsExtension:       false,
	},
}

// Lookup returns the capability entry for model, or an error when the model
// is unknown.
func Lookup(model string) (ModelCapabilities, error) {
	caps, ok := matrix[model]
	if !ok {
		return ModelCapabilities{}, fmt.Errorf("unknown model %q, known models: %v", model, KnownModels())
	}
	return caps, nil
}

// KnownModels lists the models present in the matrix, sorted.
func KnownModels() []string {
	models := make([]string, 0, len(matrix))
	for name := range matrix {
		models = append(models, name)
	}
	sort.Strings(models)
	return models
}
