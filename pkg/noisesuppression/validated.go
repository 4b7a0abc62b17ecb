package noisesuppression

import (
	"context"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/denoise/pkg/audio"
)

// Validated wraps a NoiseSuppressor and guards against numerically
// broken model output: if the backend produces any non-finite sample,
// the frame is replaced with the unprocessed input and the voice
// probability is reported as zero.
type Validated struct {
	Backend NoiseSuppressor
}

var _ NoiseSuppressor = (*Validated)(nil)

func NewValidated(backend NoiseSuppressor) *Validated {
	return &Validated{
		Backend: backend,
	}
}

func (s *Validated) Close() error {
	return s.Backend.Close()
}

func (s *Validated) SampleRate() audio.SampleRate {
	return s.Backend.SampleRate()
}

func (s *Validated) FrameSize() uint {
	return s.Backend.FrameSize()
}

func (s *Validated) SuppressFrame(ctx context.Context, input []float32, outputVoice []float32) (float64, error) {
	vadProb, err := s.Backend.SuppressFrame(ctx, input, outputVoice)
	if err != nil {
		return 0, err
	}

	for _, sample := range outputVoice {
		if math.IsNaN(float64(sample)) || math.IsInf(float64(sample), 0) {
			logger.Debugf(ctx, "noise suppressor %T returned non-finite samples, bypassing the frame", s.Backend)
			copy(outputVoice, input)
			return 0, nil
		}
	}

	if math.IsNaN(vadProb) || math.IsInf(vadProb, 0) {
		vadProb = 0
	}
	return vadProb, nil
}
