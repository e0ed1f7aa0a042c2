package capabilities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenecraft/scenecraft/internal/perrors"
)

func TestLookupUnknownModel(t *testing.T) {
	_, err := Lookup("veo-99.0")
	require.Error(t, err)
}

func TestKnownModelsSorted(t *testing.T) {
	models := KnownModels()
	require.Len(t, models, 3)
	assert.Equal(t, []string{
		"veo-2.0-generate-001",
		"veo-3.1-fast-generate-preview",
		"veo-3.1-generate-preview",
	}, models)
}

func paramErr(t *testing.T, err error) perrors.Err {
	t.Helper()
	require.Error(t, err)

	var perr perrors.Err
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, perrors.ErrCodeParameterValidation.Code, perr.ErrorCode)
	assert.False(t, perr.Retryable)
	return perr
}

func TestValidateResolution(t *testing.T) {
	res720 := Resolution720p
	res1080 := Resolution1080p

	t.Run("1080p only allows 8 seconds", func(t *testing.T) {
		six := 6
		perr := paramErr(t, ValidateResolution("veo-3.1-generate-preview", &res1080, AspectRatio16x9, &six))
		assert.Equal(t, "use 8s", perr.SuggestedAction)

		eight := 8
		assert.NoError(t, ValidateResolution("veo-3.1-generate-preview", &res1080, AspectRatio16x9, &eight))
	})

	t.Run("720p allows short durations", func(t *testing.T) {
		four := 4
		assert.NoError(t, ValidateResolution("veo-3.1-generate-preview", &res720, AspectRatio16x9, &four))
	})

	t.Run("model without resolution support rejects the parameter", func(t *testing.T) {
		perr := paramErr(t, ValidateResolution("veo-2.0-generate-001", &res720, AspectRatio16x9, nil))
		assert.Equal(t, "omit the resolution field", perr.SuggestedAction)
	})

	t.Run("legacy model durations apply without a resolution", func(t *testing.T) {
		five := 5
		assert.NoError(t, ValidateResolution("veo-2.0-generate-001", nil, AspectRatio16x9, &five))

		three := 3
		paramErr(t, ValidateResolution("veo-2.0-generate-001", nil, AspectRatio16x9, &three))
	})

	t.Run("omitted duration defaults against the maximum resolution", func(t *testing.T) {
		// No resolution given means the 1080p default applies, so 6s must be
		// rejected just as if 1080p had been requested explicitly.
		six := 6
		paramErr(t, ValidateResolution("veo-3.1-generate-preview", nil, AspectRatio16x9, &six))
	})

	t.Run("unknown model", func(t *testing.T) {
		paramErr(t, ValidateResolution("nope", nil, AspectRatio16x9, nil))
	})

	t.Run("unsupported aspect ratio", func(t *testing.T) {
		perr := paramErr(t, ValidateResolution("veo-3.1-generate-preview", &res720, "4:3", nil))
		assert.Equal(t, "use one of [16:9 9:16]", perr.SuggestedAction)

		// Also rejected without a resolution, for every model.
		paramErr(t, ValidateResolution("veo-3.1-generate-preview", nil, "4:3", nil))
		paramErr(t, ValidateResolution("veo-2.0-generate-001", nil, "1:1", nil))
	})

	t.Run("validator is idempotent", func(t *testing.T) {
		eight := 8
		for i := 0; i < 3; i++ {
			assert.NoError(t, ValidateResolution("veo-3.1-generate-preview", &res1080, AspectRatio16x9, &eight))
		}
	})
}

func TestValidateReferenceImages(t *testing.T) {
	t.Run("zero is always valid", func(t *testing.T) {
		assert.NoError(t, ValidateReferenceImages("veo-2.0-generate-001", 0, AspectRatio9x16))
	})

	t.Run("over the cap", func(t *testing.T) {
		perr := paramErr(t, ValidateReferenceImages("veo-3.1-generate-preview", 4, AspectRatio16x9))
		assert.Equal(t, "reduce reference images to 3", perr.SuggestedAction)
	})

	t.Run("portrait aspect ratio rejected", func(t *testing.T) {
		perr := paramErr(t, ValidateReferenceImages("veo-3.1-generate-preview", 1, AspectRatio9x16))
		assert.Equal(t, "use aspect ratio 16:9", perr.SuggestedAction)
	})

	t.Run("unsupported model", func(t *testing.T) {
		paramErr(t, ValidateReferenceImages("veo-2.0-generate-001", 1, AspectRatio16x9))
	})

	t.Run("at the cap", func(t *testing.T) {
		assert.NoError(t, ValidateReferenceImages("veo-3.1-generate-preview", 3, AspectRatio16x9))
	})
}

func TestValidateLastFrame(t *testing.T) {
	t.Run("requires both endpoints", func(t *testing.T) {
		perr := paramErr(t, ValidateLastFrame("veo-3.1-generate-preview", true, false))
		assert.Equal(t, "supply an initial image", perr.SuggestedAction)
	})

	t.Run("with initial image", func(t *testing.T) {
		assert.NoError(t, ValidateLastFrame("veo-3.1-generate-preview", true, true))
	})

	t.Run("unsupported model", func(t *testing.T) {
		paramErr(t, ValidateLastFrame("veo-2.0-generate-001", true, true))
	})

	t.Run("no last frame short-circuits", func(t *testing.T) {
		assert.NoError(t, ValidateLastFrame("veo-2.0-generate-001", false, false))
	})
}

func TestValidateVideoExtension(t *testing.T) {
	const model = "veo-3.1-generate-preview"

	t.Run("count bounds", func(t *testing.T) {
		paramErr(t, ValidateVideoExtension(model, 8, 0))
		paramErr(t, ValidateVideoExtension(model, 8, 21))
		assert.NoError(t, ValidateVideoExtension(model, 8, 1))
		assert.NoError(t, ValidateVideoExtension(model, 8, 20))
	})

	t.Run("input ceiling", func(t *testing.T) {
		assert.NoError(t, ValidateVideoExtension(model, 141, 1))
		paramErr(t, ValidateVideoExtension(model, 142, 1))
	})

	t.Run("projected ceiling with remaining count suggestion", func(t *testing.T) {
		// 135 + 2*7 = 149 exceeds 148; only one more extension fits.
		perr := paramErr(t, ValidateVideoExtension(model, 135, 2))
		assert.Equal(t, "reduce extension count to 1", perr.SuggestedAction)

		assert.NoError(t, ValidateVideoExtension(model, 135, 1))
	})

	t.Run("unsupported model", func(t *testing.T) {
		paramErr(t, ValidateVideoExtension("veo-2.0-generate-001", 8, 1))
	})
}

func TestGetDefaultResolution(t *testing.T) {
	res, ok, err := GetDefaultResolution("veo-3.1-generate-preview", AspectRatio16x9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Resolution1080p, res)

	_, ok, err = GetDefaultResolution("veo-2.0-generate-001", AspectRatio16x9)
	require.NoError(t, err)
	assert.False(t, ok, "models without resolution support must omit the field")
}

func TestGetDefaultDuration(t *testing.T) {
	res1080 := Resolution1080p
	res720 := Resolution720p

	cases := []struct {
		name string
		in   DurationInput
		want int
	}{
		{"no constraints", DurationInput{}, 6},
		{"720p stays at default", DurationInput{Resolution: &res720}, 6},
		{"1080p forces 8s", DurationInput{Resolution: &res1080}, 8},
		{"reference images force 8s", DurationInput{HasReferenceImages: true}, 8},
		{"last frame forces 8s", DurationInput{HasLastFrame: true}, 8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GetDefaultDuration("veo-3.1-generate-preview", tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := GetDefaultDuration("nope", DurationInput{})
	require.Error(t, err)
}
