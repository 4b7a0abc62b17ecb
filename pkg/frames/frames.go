// Package frames handles the chunk-to-frame plumbing in front of the
// denoising model: accumulation of arbitrarily-sized capture chunks
// into fixed-size frames, sample rate conversion and channel downmix.
package frames

import (
	"fmt"

	"github.com/xaionaro-go/denoise/pkg/audio"
)

const (
	// ModelSampleRate is the only sample rate the denoising models accept.
	ModelSampleRate audio.SampleRate = 48000

	// Size is the amount of samples per frame (10ms at 48kHz).
	Size = 480
)

// ErrUnsupportedSampleRate is returned at configuration time for input
// sample rates no converter is implemented for.
type ErrUnsupportedSampleRate struct {
	SampleRate audio.SampleRate
}

func (err ErrUnsupportedSampleRate) Error() string {
	return fmt.Sprintf("unsupported sample rate %dHz (supported: 44100Hz and 48000Hz)", err.SampleRate)
}

// DownmixMono extracts the first channel from interleaved multi-channel
// samples. A single-channel input is returned as is.
func DownmixMono(chunk []float32, channels audio.Channel, dst []float32) []float32 {
	if channels <= 1 {
		return append(dst, chunk...)
	}
	step := int(channels)
	for idx := 0; idx+step <= len(chunk); idx += step {
		dst = append(dst, chunk[idx])
	}
	return dst
}
