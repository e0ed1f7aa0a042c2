package capabilities

import (
	"fmt"
	"sort"

	"github.com/scenecraft/scenecraft/internal/perrors"
)

// The validators below are defensive and independent: each may be called in
// isolation and assumes no other validator has run first. Callers chain all
// applicable validators before issuing the external call.

func unknownModelErr(model string) error {
	return perrors.NewErrParameterValidation(
		fmt.Sprintf("unknown model %q", model),
		fmt.Sprintf("use one of %v", KnownModels()),
	)
}

// ValidateResolution checks a requested resolution and duration against the
// model's matrix. resolution and duration are nil when the caller left them
// to be defaulted.
func ValidateResolution(model string, resolution *Resolution, aspectRatio AspectRatio, duration *int) error {
	caps, err := Lookup(model)
	if err != nil {
		return unknownModelErr(model)
	}

	if _, ok := caps.Durations[aspectRatio]; !ok {
		return perrors.NewErrParameterValidation(
			fmt.Sprintf("aspect ratio %s is not supported by model %q", aspectRatio, model),
			fmt.Sprintf("use one of %v", supportedAspectRatios(caps)),
		)
	}

	if resolution != nil {
		if !caps.SupportsResolution {
			return perrors.NewErrParameterValidation(
				fmt.Sprintf("model %q does not accept a resolution parameter", model),
				"omit the resolution field",
			)
		}

		supported := caps.Resolutions[aspectRatio]
		if !containsResolution(supported, *resolution) {
			// Distinguish a resolution the model never supports from one
			// that merely exceeds this aspect ratio's maximum.
			if supportedAnywhere(caps, *resolution) {
				max := supported[len(supported)-1]
				return perrors.NewErrParameterValidation(
					fmt.Sprintf("resolution %s exceeds the maximum for aspect ratio %s on model %q", *resolution, aspectRatio, model),
					fmt.Sprintf("use %s", max),
				)
			}

			return perrors.NewErrParameterValidation(
				fmt.Sprintf("resolution %s is not supported by model %q", *resolution, model),
				fmt.Sprintf("use one of %v", supported),
			)
		}
	}

	if duration != nil {
		allowed := allowedDurations(caps, aspectRatio, resolution)
		if len(allowed) > 0 && !containsInt(allowed, *duration) {
			return perrors.NewErrParameterValidation(
				fmt.Sprintf("duration %ds is not allowed for model %q at %s/%s", *duration, model, aspectRatio, resolutionLabel(caps, aspectRatio, resolution)),
				fmt.Sprintf("use %ds", allowed[len(allowed)-1]),
			)
		}
	}

	return nil
}

// ValidateReferenceImages checks reference image count and the aspect ratio
// policy. A zero count is always valid.
func ValidateReferenceImages(model string, count int, aspectRatio AspectRatio) error {
	caps, err := Lookup(model)
	if err != nil {
		return unknownModelErr(model)
	}

	if count == 0 {
		return nil
	}

	if !caps.SupportsReferenceImages {
		return perrors.NewErrParameterValidation(
			fmt.Sprintf("model %q does not support reference images", model),
			"remove the reference images or switch to a model that supports them",
		)
	}

	if count > MaxReferenceImages {
		return perrors.NewErrParameterValidation(
			fmt.Sprintf("%d reference images supplied, the maximum is %d", count, MaxReferenceImages),
			fmt.Sprintf("reduce reference images to %d", MaxReferenceImages),
		)
	}

	if aspectRatio != ReferenceImageAspectRatio {
		return perrors.NewErrParameterValidation(
			fmt.Sprintf("reference images are only supported with aspect ratio %s, got %s", ReferenceImageAspectRatio, aspectRatio),
			fmt.Sprintf("use aspect ratio %s", ReferenceImageAspectRatio),
		)
	}

	return nil
}

// ValidateLastFrame checks last-frame interpolation support. Interpolation
// requires both endpoints, so a last frame without an initial image fails.
func ValidateLastFrame(model string, hasLastFrame bool, hasInitialImage bool) error {
	caps, err := Lookup(model)
	if err != nil {
		return unknownModelErr(model)
	}

	if !hasLastFrame {
		return nil
	}

	if !caps.SupportsLastFrame {
		return perrors.NewErrParameterValidation(
			fmt.Sprintf("model %q does not support last-frame interpolation", model),
			"remove the last frame or switch to a model that supports it",
		)
	}

	if !hasInitialImage {
		return perrors.NewErrParameterValidation(
			"a last frame was supplied without an initial image; interpolation requires both endpoints",
			"supply an initial image",
		)
	}

	return nil
}

// ValidateVideoExtension checks both extension ceilings as independent
// guards: the input ceiling rejects pre-flight, the result ceiling rejects
// the projected final duration.
func ValidateVideoExtension(model string, currentDurationSeconds int, extensionCount int) error {
	caps, err := Lookup(model)
	if err != nil {
		return unknownModelErr(model)
	}

	if !caps.SupportsExtension {
		return perrors.NewErrParameterValidation(
			fmt.Sprintf("model %q does not support video extension", model),
			"switch to a model that supports extension",
		)
	}

	if extensionCount < MinExtensionCount || extensionCount > MaxExtensionCount {
		return perrors.NewErrParameterValidation(
			fmt.Sprintf("extension count %d is outside the allowed range [%d,%d]", extensionCount, MinExtensionCount, MaxExtensionCount),
			fmt.Sprintf("use an extension count between %d and %d", MinExtensionCount, MaxExtensionCount),
		)
	}

	if currentDurationSeconds > ExtensionInputCeilingSeconds {
		return perrors.NewErrParameterValidation(
			fmt.Sprintf("current duration %ds already exceeds the %ds extension ceiling", currentDurationSeconds, ExtensionInputCeilingSeconds),
			"the video cannot be extended further",
		)
	}

	projected := currentDurationSeconds + extensionCount*SecondsPerExtension
	if projected > ExtensionResultCeilingSeconds {
		maxRemaining := (ExtensionResultCeilingSeconds - currentDurationSeconds) / SecondsPerExtension
		return perrors.NewErrParameterValidation(
			fmt.Sprintf("projected duration %ds exceeds the %ds hard ceiling", projected, ExtensionResultCeilingSeconds),
			fmt.Sprintf("reduce extension count to %d", maxRemaining),
		)
	}

	return nil
}

func allowedDurations(caps ModelCapabilities, aspectRatio AspectRatio, resolution *Resolution) []int {
	byResolution := caps.Durations[aspectRatio]
	if byResolution == nil {
		return nil
	}

	key := Resolution("")
	if caps.SupportsResolution {
		if resolution != nil {
			key = *resolution
		} else if supported := caps.Resolutions[aspectRatio]; len(supported) > 0 {
			// No resolution requested: the default (maximum) will apply.
			key = supported[len(supported)-1]
		}
	}

	return byResolution[key]
}

func resolutionLabel(caps ModelCapabilities, aspectRatio AspectRatio, resolution *Resolution) string {
	if resolution != nil {
		return string(*resolution)
	}
	if !caps.SupportsResolution {
		return "default"
	}
	if supported := caps.Resolutions[aspectRatio]; len(supported) > 0 {
		return string(supported[len(supported)-1])
	}
	return "default"
}

func supportedAspectRatios(caps ModelCapabilities) []AspectRatio {
	ratios := make([]AspectRatio, 0, len(caps.Durations))
	for ratio := range caps.Durations {
		ratios = append(ratios, ratio)
	}
	sort.Slice(ratios, func(i, j int) bool { return ratios[i] < ratios[j] })
	return ratios
}

func supportedAnywhere(caps ModelCapabilities, resolution Resolution) bool {
	for _, list := range caps.Resolutions {
		if containsResolution(list, resolution) {
			return true
		}
	}
	return false
}

func containsResolution(list []Resolution, r Resolution) bool {
	for _, v := range list {
		if v == r {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
