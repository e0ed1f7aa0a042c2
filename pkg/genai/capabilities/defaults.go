package capabilities

// DefaultDurationSeconds and ForcedDurationSeconds are the two possible
// outputs of GetDefaultDuration.
const (
	DefaultDurationSeconds = 6
	ForcedDurationSeconds  = 8
)

// durationRule forces a duration when its condition holds. Rules mirror
// provider constraints and are kept as explicit, independently testable
// values rather than inline conditionals.
type durationRule struct {
	Name    string
	Applies func(in DurationInput) bool
	Seconds int
}

// DurationInput is the request shape GetDefaultDuration decides on.
type DurationInput struct {
	Resolution         *Resolution
	HasReferenceImages bool
	HasLastFrame       bool
}

var durationRules = []durationRule{
	{
		Name: "1080p requires 8s",
		Applies: func(in DurationInput) bool {
			return in.Resolution != nil && *in.Resolution == Resolution1080p
		},
		Seconds: ForcedDurationSeconds,
	},
	{
		Name:    "reference images require 8s",
		Applies: func(in DurationInput) bool { return in.HasReferenceImages },
		Seconds: ForcedDurationSeconds,
	},
	{
		Name:    "last-frame interpolation requires 8s",
		Applies: func(in DurationInput) bool { return in.HasLastFrame },
		Seconds: ForcedDurationSeconds,
	},
}

// GetDefaultResolution returns the maximum resolution the model supports for
// the aspect ratio. The second return is false when the model takes no
// resolution parameter at all; the caller must then omit the field entirely
// rather than send a default.
func GetDefaultResolution(model string, aspectRatio AspectRatio) (Resolution, bool, error) {
	caps, err := Lookup(model)
	if err != nil {
		return "", false, err
	}

	if !caps.SupportsResolution {
		return "", false, nil
	}

	resolutions := caps.Resolutions[aspectRatio]
	if len(resolutions) == 0 {
		return "", false, nil
	}

	// Lists are kept ascending; the default is the maximum.
	return resolutions[len(resolutions)-1], true, nil
}

// GetDefaultDuration returns the duration to use when the caller supplied
// none. Pure function of its inputs.
func GetDefaultDuration(model string, in DurationInput) (int, error) {
	if _, err := Lookup(model); err != nil {
		return 0, err
	}

	for _, rule := range durationRules {
		if rule.Applies(in) {
			return rule.Seconds, nil
		}
	}

	return DefaultDurationSeconds, nil
}
