//go:build rnnoise
// +build rnnoise

package rnnoise

import (
	"context"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/denoise/pkg/audio"
	"github.com/xaionaro-go/denoise/pkg/noisesuppression"
)

/*
#cgo pkg-config: rnnoise
#cgo CFLAGS: -march=native
#include <rnnoise.h>
*/
import "C"

type RNNoise struct {
	Locker       sync.Mutex
	DenoiseState *C.DenoiseState
	Buffer       []float32
}

var _ noisesuppression.NoiseSuppressor = (*RNNoise)(nil)

var frameSize int

func init() {
	frameSize = int(C.rnnoise_get_frame_size())
}

func New() (*RNNoise, error) {
	return &RNNoise{
		DenoiseState: C.rnnoise_create(nil),
		Buffer:       make([]float32, frameSize),
	}, nil
}

func (s *RNNoise) Close() error {
	if s.DenoiseState == nil {
		return fmt.Errorf("double-free attempt")
	}
	C.rnnoise_destroy(s.DenoiseState)
	s.DenoiseState = nil
	return nil
}

func (s *RNNoise) SampleRate() audio.SampleRate {
	return 48_000
}

func (s *RNNoise) FrameSize() uint {
	return uint(frameSize)
}

func (s *RNNoise) SuppressFrame(ctx context.Context, input []float32, outputVoice []float32) (_ret float64, _err error) {
	logger.Tracef(ctx, "SuppressFrame, len:%d", len(input))
	defer func() { logger.Tracef(ctx, "/SuppressFrame, len:%d: %v", len(input), _err) }()

	if len(input) != frameSize {
		return 0, fmt.Errorf("the size of the input is not a whole frame: %d != %d", len(input), frameSize)
	}
	if len(input) != len(outputVoice) {
		return 0, fmt.Errorf("lengths of input and output slices are not equal: %d != %d", len(input), len(outputVoice))
	}

	s.Locker.Lock()
	defer s.Locker.Unlock()

	// rnnoise expects samples in the int16 value range
	for idx, sample := range input {
		s.Buffer[idx] = sample * math.MaxInt16
	}

	vadProb := C.rnnoise_process_frame(
		s.DenoiseState,
		(*C.float)(unsafe.Pointer(unsafe.SliceData(outputVoice))),
		(*C.float)(unsafe.Pointer(unsafe.SliceData(s.Buffer))),
	)

	for idx := range outputVoice {
		outputVoice[idx] /= math.MaxInt16
	}

	return float64(vadProb), nil
}
