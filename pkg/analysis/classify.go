package analysis

const silenceEnergyThreshold = 0.001

// Classify decides the dominant character of a frame from its smoothed
// voice probability and spectral shape. The checks are ordered by
// reliability: silence and speech first, then the spectral signatures.
func Classify(voiceProbability float64, profile FrequencyProfile) NoiseType {
	switch {
	case profile.TotalEnergy < silenceEnergyThreshold:
		return NoiseTypeSilence
	case voiceProbability > 0.7:
		return NoiseTypeSpeech
	case profile.HighFreqRatio > 0.3 && profile.SpectralCentroid > 2000:
		// clicky wideband transients
		return NoiseTypeKeyboard
	case profile.LowFreqRatio > 0.6 && profile.SpectralRolloff < 500:
		// low rumble
		return NoiseTypeHVAC
	case profile.MidFreqRatio > 0.4 && profile.SpectralCentroid > 1000:
		return NoiseTypeMusic
	}
	return NoiseTypeUnknown
}

// RecommendedGain is the first-approximation gain for a noise type.
func RecommendedGain(noiseType NoiseType, voiceProbability float64) float64 {
	switch noiseType {
	case NoiseTypeSilence:
		return 0.1
	case NoiseTypeSpeech:
		return 0.9
	case NoiseTypeKeyboard:
		return 0.2
	case NoiseTypeHVAC:
		return 0.15
	case NoiseTypeMusic:
		return 0.6
	}
	if voiceProbability > 0.5 {
		return 0.8
	}
	return 0.2
}
