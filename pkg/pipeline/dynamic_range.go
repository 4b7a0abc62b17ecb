package pipeline

import (
	"math"

	"github.com/xaionaro-go/denoise/pkg/audio"
)

const (
	compressorThreshold      = 0.5
	compressorRatio          = 3.0
	compressorAttackSeconds  = 0.003
	compressorReleaseSeconds = 0.1
)

// DynamicRangeCompressor evens out the level of the processed voice: a
// per-sample envelope follower drives gain reduction above the
// threshold at the configured ratio.
//
// It is not safe for concurrent use.
type DynamicRangeCompressor struct {
	attackCoeff  float64
	releaseCoeff float64
	envelope     float64
}

func NewDynamicRangeCompressor(sampleRate audio.SampleRate) *DynamicRangeCompressor {
	return &DynamicRangeCompressor{
		attackCoeff:  math.Exp(-1 / (compressorAttackSeconds * float64(sampleRate))),
		releaseCoeff: math.Exp(-1 / (compressorReleaseSeconds * float64(sampleRate))),
	}
}

// Process compresses the frame in place.
func (c *DynamicRangeCompressor) Process(frame []float32) {
	for idx := range frame {
		level := math.Abs(float64(frame[idx]))

		coeff := c.releaseCoeff
		if level > c.envelope {
			coeff = c.attackCoeff
		}
		c.envelope = level + (c.envelope-level)*coeff

		if c.envelope > compressorThreshold {
			gain := (compressorThreshold + (c.envelope-compressorThreshold)/compressorRatio) / c.envelope
			frame[idx] *= float32(gain)
		}
	}
}
