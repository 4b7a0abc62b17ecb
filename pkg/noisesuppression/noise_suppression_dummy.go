package noisesuppression

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/denoise/pkg/audio"
)

// Dummy passes the audio through unprocessed.
type Dummy struct {
	SampleRateValue audio.SampleRate
	FrameSizeValue  uint
}

var _ NoiseSuppressor = (*Dummy)(nil)

func NewDummy(
	sampleRate audio.SampleRate,
	frameSize uint,
) *Dummy {
	return &Dummy{
		SampleRateValue: sampleRate,
		FrameSizeValue:  frameSize,
	}
}

func (s *Dummy) Close() error {
	return nil
}

func (s *Dummy) SampleRate() audio.SampleRate {
	return s.SampleRateValue
}

func (s *Dummy) FrameSize() uint {
	return s.FrameSizeValue
}

func (s *Dummy) SuppressFrame(_ context.Context, input []float32, outputVoice []float32) (float64, error) {
	if len(input) != len(outputVoice) {
		return 0, fmt.Errorf("lengths of input and output slices are not equal: %d != %d", len(input), len(outputVoice))
	}
	copy(outputVoice, input)
	return 1, nil
}
