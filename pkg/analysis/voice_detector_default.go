//go:build !fvad
// +build !fvad

package analysis

import (
	"github.com/xaionaro-go/denoise/pkg/audio"
)

// NewVoiceDetector returns the voice detector for the current build.
// Without the 'fvad' tag this is the RMS energy detector.
func NewVoiceDetector(
	sampleRate audio.SampleRate,
	frameSize int,
	sensitivity float64,
) (VoiceDetector, error) {
	d := NewEnergyDetector()
	d.SetSensitivity(sensitivity)
	return d, nil
}
