package frames

import (
	"github.com/xaionaro-go/denoise/pkg/audio"
)

// Resampler converts mono samples from the input sample rate to
// ModelSampleRate by linear interpolation. It keeps a fractional read
// position and the unconsumed tail of previous input between calls, so
// no samples are lost at chunk boundaries.
//
// The read position advances by inputRate/ModelSampleRate per output
// sample and is tracked in integer arithmetic (a numerator over
// ModelSampleRate), so e.g. 441 input samples at 44100Hz map to exactly
// 480 output samples with no drift.
//
// It is not safe for concurrent use.
type Resampler struct {
	inputRate   audio.SampleRate
	passthrough bool

	buf    []float32
	posNum uint64
}

// NewResampler returns a converter from the given input rate to
// ModelSampleRate. Only 44100Hz and 48000Hz inputs are supported;
// anything else results in ErrUnsupportedSampleRate.
func NewResampler(inputRate audio.SampleRate) (*Resampler, error) {
	switch inputRate {
	case ModelSampleRate:
		return &Resampler{
			inputRate:   inputRate,
			passthrough: true,
		}, nil
	case 44100:
		return &Resampler{
			inputRate: inputRate,
		}, nil
	}
	return nil, ErrUnsupportedSampleRate{SampleRate: inputRate}
}

func (r *Resampler) InputRate() audio.SampleRate {
	return r.inputRate
}

// Resample appends the converted samples to dst and returns the result.
func (r *Resampler) Resample(input []float32, dst []float32) []float32 {
	if r.passthrough {
		return append(dst, input...)
	}

	den := uint64(ModelSampleRate)
	r.buf = append(r.buf, input...)
	for r.posNum/den < uint64(len(r.buf)) {
		idx := int(r.posNum / den)
		sample := r.buf[idx]
		if idx+1 < len(r.buf) {
			frac := float32(r.posNum%den) / float32(den)
			sample += frac * (r.buf[idx+1] - sample)
		}
		dst = append(dst, sample)
		r.posNum += uint64(r.inputRate)
	}

	consumed := r.posNum / den
	if consumed > uint64(len(r.buf)) {
		consumed = uint64(len(r.buf))
	}
	n := copy(r.buf, r.buf[consumed:])
	r.buf = r.buf[:n]
	r.posNum -= consumed * den
	return dst
}

// Reset discards the interpolation state.
func (r *Resampler) Reset() {
	r.buf = r.buf[:0]
	r.posNum = 0
}
