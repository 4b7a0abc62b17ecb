package analysis

import (
	"context"
	"io"
	"math"
	"sync"
)

// VoiceDetector estimates the probability that one frame carries
// speech. Implementations return a raw per-frame value; smoothing
// happens in the Analyzer.
type VoiceDetector interface {
	io.Closer

	DetectVoice(ctx context.Context, frame []float32) (float64, error)

	// SetSensitivity adjusts how easily the detector triggers;
	// the expected range is (0, 0.5].
	SetSensitivity(sensitivity float64)
}

const (
	energyDetectorDefaultThreshold = 0.01
	energyVoiceProbability         = 0.8
	energyNoVoiceProbability       = 0.2
)

// EnergyDetector is a trivial voice detector: a frame whose RMS exceeds
// a threshold is considered speech.
type EnergyDetector struct {
	locker    sync.Mutex
	threshold float64
}

var _ VoiceDetector = (*EnergyDetector)(nil)

func NewEnergyDetector() *EnergyDetector {
	return &EnergyDetector{
		threshold: energyDetectorDefaultThreshold,
	}
}

func (d *EnergyDetector) DetectVoice(_ context.Context, frame []float32) (float64, error) {
	if len(frame) == 0 {
		return 0, nil
	}

	var energy float64
	for _, sample := range frame {
		energy += float64(sample) * float64(sample)
	}
	rms := math.Sqrt(energy / float64(len(frame)))

	d.locker.Lock()
	threshold := d.threshold
	d.locker.Unlock()

	if rms > threshold {
		return energyVoiceProbability, nil
	}
	return energyNoVoiceProbability, nil
}

func (d *EnergyDetector) SetSensitivity(sensitivity float64) {
	d.locker.Lock()
	defer d.locker.Unlock()
	d.threshold = sensitivity * 0.1
}

func (*EnergyDetector) Close() error {
	return nil
}
