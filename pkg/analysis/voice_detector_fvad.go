//go:build fvad
// +build fvad

package analysis

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/josharian/fvad"
	"github.com/xaionaro-go/denoise/pkg/audio"
)

const (
	fvadVoiceProbability   = 0.9
	fvadNoVoiceProbability = 0.1
)

// FVADDetector wraps the WebRTC voice activity detector.
type FVADDetector struct {
	locker   sync.Mutex
	detector *fvad.Detector
	buffer   []int16
}

var _ VoiceDetector = (*FVADDetector)(nil)

// NewVoiceDetector returns the voice detector for the current build.
// With the 'fvad' tag this is the WebRTC VAD.
func NewVoiceDetector(
	sampleRate audio.SampleRate,
	frameSize int,
	sensitivity float64,
) (VoiceDetector, error) {
	detector := fvad.NewDetector()
	if err := detector.SetSampleRate(int(sampleRate)); err != nil {
		detector.Close()
		return nil, fmt.Errorf("unable to set the sample rate to %d: %w", sampleRate, err)
	}
	d := &FVADDetector{
		detector: detector,
		buffer:   make([]int16, frameSize),
	}
	d.SetSensitivity(sensitivity)
	return d, nil
}

func (d *FVADDetector) DetectVoice(_ context.Context, frame []float32) (float64, error) {
	d.locker.Lock()
	defer d.locker.Unlock()

	if len(frame) > len(d.buffer) {
		d.buffer = make([]int16, len(frame))
	}
	buf := d.buffer[:len(frame)]
	for idx, sample := range frame {
		v := float64(sample) * math.MaxInt16
		if v > math.MaxInt16 {
			v = math.MaxInt16
		}
		if v < math.MinInt16 {
			v = math.MinInt16
		}
		buf[idx] = int16(v)
	}

	active, err := d.detector.Process(buf)
	if err != nil {
		return 0, fmt.Errorf("unable to process the frame: %w", err)
	}
	if active {
		return fvadVoiceProbability, nil
	}
	return fvadNoVoiceProbability, nil
}

// SetSensitivity maps the sensitivity onto the detector's
// aggressiveness mode (0..3): the lower the sensitivity, the more
// aggressively frames are declared non-speech.
func (d *FVADDetector) SetSensitivity(sensitivity float64) {
	d.locker.Lock()
	defer d.locker.Unlock()

	mode := int((0.5 - sensitivity) * 8)
	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}
	d.detector.SetMode(mode)
}

func (d *FVADDetector) Close() error {
	d.locker.Lock()
	defer d.locker.Unlock()
	d.detector.Close()
	return nil
}
