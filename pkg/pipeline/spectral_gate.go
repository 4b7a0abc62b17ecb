package pipeline

import (
	"math"

	"github.com/xaionaro-go/denoise/pkg/audio"
)

const (
	gateInitialNoiseFloor  = 0.001
	gateThresholdMult      = 2.0
	gateAttackTimeSeconds  = 0.001
	gateReleaseTimeSeconds = 0.05
	gateNoiseFloorAdapt    = 0.01
)

// SpectralGate attenuates audio while its level stays near the learned
// noise floor. The gate opens fast (attack) and closes slowly
// (release), with a continuous state in [0, 1] applied as a gain, so
// there are no hard on/off clicks.
//
// It is not safe for concurrent use.
type SpectralGate struct {
	noiseFloor     float64
	attackSamples  float64
	releaseSamples float64
	gateState      float64
}

func NewSpectralGate(sampleRate audio.SampleRate) *SpectralGate {
	return &SpectralGate{
		noiseFloor:     gateInitialNoiseFloor,
		attackSamples:  gateAttackTimeSeconds * float64(sampleRate),
		releaseSamples: gateReleaseTimeSeconds * float64(sampleRate),
	}
}

// Process applies the gate to the frame in place.
func (g *SpectralGate) Process(frame []float32) {
	if len(frame) == 0 {
		return
	}

	var energy float64
	for _, sample := range frame {
		energy += float64(sample) * float64(sample)
	}
	rms := math.Sqrt(energy / float64(len(frame)))

	// learn the floor only from frames that look like noise, so that
	// sustained speech does not creep into the estimate
	if rms < g.noiseFloor*gateThresholdMult {
		g.noiseFloor = g.noiseFloor*(1-gateNoiseFloorAdapt) + rms*gateNoiseFloorAdapt
	}
	threshold := g.noiseFloor * gateThresholdMult

	open := rms > threshold
	for idx := range frame {
		if open {
			g.gateState += 1 / g.attackSamples
			if g.gateState > 1 {
				g.gateState = 1
			}
		} else {
			g.gateState -= 1 / g.releaseSamples
			if g.gateState < 0 {
				g.gateState = 0
			}
		}
		frame[idx] *= float32(g.gateState)
	}
}

// NoiseFloor returns the current noise floor estimate.
func (g *SpectralGate) NoiseFloor() float64 {
	return g.noiseFloor
}
