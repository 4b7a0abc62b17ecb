package noisesuppression

import (
	"context"
	"io"

	"github.com/xaionaro-go/denoise/pkg/audio"
)

// NoiseSuppressor denoises fixed-size mono frames of float32 samples
// at SampleRate.
type NoiseSuppressor interface {
	io.Closer

	SampleRate() audio.SampleRate
	FrameSize() uint

	// SuppressFrame denoises one frame of exactly FrameSize samples
	// from input into outputVoice (also FrameSize long) and returns the
	// voice probability of the frame in [0, 1].
	SuppressFrame(ctx context.Context, input []float32, outputVoice []float32) (float64, error)
}
