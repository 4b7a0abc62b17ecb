package pipeline

// ProcessingParameters is the runtime-tunable configuration of the
// pipeline. It is read once per frame; updates apply from the next
// frame on.
type ProcessingParameters struct {
	// Sensitivity controls how easily audio is considered speech,
	// clamped to [0.01, 0.5].
	Sensitivity float64

	// AdaptiveMode enables the noise-type-aware gain; when disabled a
	// simple two-level gain driven by the voice probability is used.
	AdaptiveMode bool

	NoiseGateEnabled    bool
	DynamicRangeEnabled bool
}

const (
	SensitivityMin     = 0.01
	SensitivityMax     = 0.5
	SensitivityDefault = 0.1
)

func DefaultProcessingParameters() ProcessingParameters {
	return ProcessingParameters{
		Sensitivity:         SensitivityDefault,
		AdaptiveMode:        true,
		NoiseGateEnabled:    true,
		DynamicRangeEnabled: true,
	}
}

func clampSensitivity(sensitivity float64) float64 {
	if sensitivity < SensitivityMin {
		return SensitivityMin
	}
	if sensitivity > SensitivityMax {
		return SensitivityMax
	}
	return sensitivity
}
