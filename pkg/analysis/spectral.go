package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/xaionaro-go/denoise/pkg/audio"
)

// SpectralAnalyzer extracts the FrequencyProfile of fixed-size frames:
// the frame is Hann-windowed, transformed, and the features are
// computed over the first half of the magnitude spectrum.
//
// It is not safe for concurrent use.
type SpectralAnalyzer struct {
	sampleRate audio.SampleRate
	frameSize  int
	window     []float64
	scratch    []float64
	magnitudes []float64
}

func NewSpectralAnalyzer(
	sampleRate audio.SampleRate,
	frameSize int,
) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		window:     window.Hann(frameSize),
		scratch:    make([]float64, frameSize),
		magnitudes: make([]float64, frameSize/2),
	}
}

func (a *SpectralAnalyzer) Analyze(frame []float32) FrequencyProfile {
	if len(frame) != a.frameSize {
		return FrequencyProfile{}
	}

	var energy float64
	for idx, sample := range frame {
		energy += float64(sample) * float64(sample)
		a.scratch[idx] = float64(sample) * a.window[idx]
	}

	spectrum := fft.FFTReal(a.scratch)
	for k := range a.magnitudes {
		a.magnitudes[k] = cmplx.Abs(spectrum[k])
	}

	profile := FrequencyProfile{
		TotalEnergy: energy / float64(len(frame)),
	}

	var totalMagnitude float64
	for _, mag := range a.magnitudes {
		totalMagnitude += mag
	}
	if totalMagnitude <= 0 {
		return profile
	}

	lowEnd := len(a.magnitudes) / 4
	highStart := len(a.magnitudes) * 3 / 4
	var lowSum, midSum, highSum, weightedFreqSum float64
	for k, mag := range a.magnitudes {
		switch {
		case k < lowEnd:
			lowSum += mag
		case k < highStart:
			midSum += mag
		default:
			highSum += mag
		}
		weightedFreqSum += mag * a.binFrequency(k)
	}
	profile.LowFreqRatio = lowSum / totalMagnitude
	profile.MidFreqRatio = midSum / totalMagnitude
	profile.HighFreqRatio = highSum / totalMagnitude
	profile.SpectralCentroid = weightedFreqSum / totalMagnitude
	profile.SpectralRolloff = a.rolloff()

	return profile
}

// rolloff is the frequency below which 85% of the spectral power sits.
func (a *SpectralAnalyzer) rolloff() float64 {
	var totalPower float64
	for _, mag := range a.magnitudes {
		totalPower += mag * mag
	}
	target := totalPower * 0.85

	var cumulative float64
	for k, mag := range a.magnitudes {
		cumulative += mag * mag
		if cumulative >= target {
			return a.binFrequency(k)
		}
	}
	return a.binFrequency(len(a.magnitudes) - 1)
}

func (a *SpectralAnalyzer) binFrequency(k int) float64 {
	return float64(k) * float64(a.sampleRate) / float64(a.frameSize)
}
