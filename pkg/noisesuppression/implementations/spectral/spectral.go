// Package spectral implements a pure Go noise suppressor based on
// spectral subtraction: it keeps a per-bin magnitude estimate of the
// noise floor and subtracts it (with over-subtraction) from the
// spectrum of each frame.
package spectral

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/xaionaro-go/denoise/pkg/audio"
	"github.com/xaionaro-go/denoise/pkg/noisesuppression"
)

const (
	sampleRate audio.SampleRate = 48000
	frameSize                   = 480

	// the noise profile is learned unconditionally over this many
	// initial frames, and afterwards only from frames quiet enough to
	// be considered noise
	warmupFrames = 10

	overSubtraction  = 1.5
	gainFloor        = 0.1
	noiseAdaptRate   = 0.05
	noiseUpdateRatio = 1.5
)

type Suppressor struct {
	locker     sync.Mutex
	noiseMag   []float64
	noiseRMS   float64
	frameCount uint64
	scratch    []float64
}

var _ noisesuppression.NoiseSuppressor = (*Suppressor)(nil)

func New() (*Suppressor, error) {
	return &Suppressor{
		noiseMag: make([]float64, frameSize/2+1),
		scratch:  make([]float64, frameSize),
	}, nil
}

func (s *Suppressor) Close() error {
	return nil
}

func (s *Suppressor) SampleRate() audio.SampleRate {
	return sampleRate
}

func (s *Suppressor) FrameSize() uint {
	return frameSize
}

func (s *Suppressor) SuppressFrame(ctx context.Context, input []float32, outputVoice []float32) (float64, error) {
	if len(input) != frameSize {
		return 0, fmt.Errorf("the size of the input is not a whole frame: %d != %d", len(input), frameSize)
	}
	if len(input) != len(outputVoice) {
		return 0, fmt.Errorf("lengths of input and output slices are not equal: %d != %d", len(input), len(outputVoice))
	}

	s.locker.Lock()
	defer s.locker.Unlock()

	var energy float64
	for idx, sample := range input {
		s.scratch[idx] = float64(sample)
		energy += float64(sample) * float64(sample)
	}
	rms := math.Sqrt(energy / frameSize)

	spectrum := fft.FFTReal(s.scratch)
	halfBins := frameSize/2 + 1

	s.frameCount++
	learning := s.frameCount <= warmupFrames
	if learning || rms < s.noiseRMS*noiseUpdateRatio {
		rate := noiseAdaptRate
		if learning {
			// plain running average while warming up
			rate = 1 / float64(s.frameCount)
		}
		for k := 0; k < halfBins; k++ {
			mag := cmplx.Abs(spectrum[k])
			s.noiseMag[k] += rate * (mag - s.noiseMag[k])
		}
		s.noiseRMS += rate * (rms - s.noiseRMS)
	}

	if learning {
		copy(outputVoice, input)
		return 0, nil
	}

	for k := 0; k < halfBins; k++ {
		mag := cmplx.Abs(spectrum[k])
		g := gainFloor
		if mag > 0 {
			g = math.Max((mag-overSubtraction*s.noiseMag[k])/mag, gainFloor)
		}
		spectrum[k] *= complex(g, 0)
		if k > 0 && k < frameSize/2 {
			spectrum[frameSize-k] *= complex(g, 0)
		}
	}

	voice := fft.IFFT(spectrum)
	for idx := range outputVoice {
		outputVoice[idx] = float32(real(voice[idx]))
	}

	return s.voiceProbability(rms), nil
}

// voiceProbability estimates how likely the frame carries speech from
// how far its level stands above the learned noise floor.
func (s *Suppressor) voiceProbability(rms float64) float64 {
	vadProb := (rms - s.noiseRMS*noiseUpdateRatio) / (s.noiseRMS*3 + 1e-9)
	if vadProb < 0 {
		return 0
	}
	if vadProb > 1 {
		return 1
	}
	return vadProb
}
