package pipeline

import (
	"github.com/xaionaro-go/denoise/pkg/analysis"
)

const (
	// GainMin is the hard lower bound of every computed gain; audio is
	// never muted completely.
	GainMin = 0.02
	GainMax = 1.0

	fadeGainDefault = 0.6
)

type gainParameters struct {
	SpeechGain      float64
	NoiseGain       float64
	SpeechThreshold float64
}

func gainParametersFor(noiseType analysis.NoiseType) gainParameters {
	switch noiseType {
	case analysis.NoiseTypeSpeech:
		return gainParameters{SpeechGain: 0.9, NoiseGain: 0.3, SpeechThreshold: 0.4}
	case analysis.NoiseTypeKeyboard:
		return gainParameters{SpeechGain: 0.8, NoiseGain: 0.05, SpeechThreshold: 0.6}
	case analysis.NoiseTypeHVAC:
		return gainParameters{SpeechGain: 0.85, NoiseGain: 0.1, SpeechThreshold: 0.5}
	case analysis.NoiseTypeMusic:
		return gainParameters{SpeechGain: 0.9, NoiseGain: 0.4, SpeechThreshold: 0.3}
	case analysis.NoiseTypeSilence:
		return gainParameters{SpeechGain: 0.95, NoiseGain: 0.05, SpeechThreshold: 0.3}
	}
	return gainParameters{SpeechGain: 0.8, NoiseGain: 0.2, SpeechThreshold: 0.5}
}

// AdaptiveGainFor computes the frame gain from the suppressor's voice
// probability and the analysis context: per-noise-type speech/noise
// gains are interpolated by how confidently the frame is speech.
func AdaptiveGainFor(voiceProbability float64, actx analysis.AudioContext) float64 {
	params := gainParametersFor(actx.NoiseType)

	// refine by the analyzer's own confidence
	switch {
	case actx.VoiceProbability > 0.8:
		params.SpeechGain += 0.1
		if params.SpeechGain > 1.0 {
			params.SpeechGain = 1.0
		}
	case actx.VoiceProbability < 0.2:
		params.NoiseGain *= 0.5
		if params.NoiseGain < GainMin {
			params.NoiseGain = GainMin
		}
	}

	speechConfidence := (voiceProbability - params.SpeechThreshold) / (1 - params.SpeechThreshold)
	if speechConfidence < 0 {
		speechConfidence = 0
	}
	if speechConfidence > 1 {
		speechConfidence = 1
	}

	gain := params.NoiseGain + (params.SpeechGain-params.NoiseGain)*speechConfidence

	switch actx.NoiseType {
	case analysis.NoiseTypeKeyboard:
		if voiceProbability < 0.3 {
			gain *= 0.7
		}
	case analysis.NoiseTypeHVAC:
		gain *= 0.9
	}

	if gain < GainMin {
		gain = GainMin
	}
	if gain > GainMax {
		gain = GainMax
	}
	return gain
}

// SimpleGainFor is the non-adaptive two-level gain.
func SimpleGainFor(voiceProbability float64) float64 {
	if voiceProbability > 0.5 {
		return 0.8
	}
	return 0.2
}

// FadeGainFor is the gain applied to trailing partial audio that is
// flushed without a full analysis pass.
func FadeGainFor(analysis.NoiseType) float64 {
	return fadeGainDefault
}
