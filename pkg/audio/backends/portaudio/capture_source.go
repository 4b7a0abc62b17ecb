package portaudio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/gordonklaus/portaudio"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/denoise/pkg/audio/types"
	"github.com/xaionaro-go/observability"
)

const (
	// ChunkDuration is how much audio one blocking Read returns.
	ChunkDuration = 10 * time.Millisecond
)

type CaptureSource struct {
	PortAudioStream *portaudio.Stream
	Buffer          []float32
	SampleRateValue types.SampleRate
	CancelFunc      context.CancelFunc
	WaitGroup       sync.WaitGroup
}

var _ types.CaptureSource = (*CaptureSource)(nil)

// NewCaptureSource opens the default input device mono, preferring the
// model's native rate.
func NewCaptureSource() (*CaptureSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	var mErr *multierror.Error
	for _, sampleRate := range []types.SampleRate{48000, 44100} {
		bufferItemsCount := int(ChunkDuration.Seconds() * float64(sampleRate))
		buf := make([]float32, bufferItemsCount)
		stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), bufferItemsCount, buf)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to open an input stream at %dHz: %w", sampleRate, err))
			continue
		}
		return &CaptureSource{
			PortAudioStream: stream,
			Buffer:          buf,
			SampleRateValue: sampleRate,
		}, nil
	}
	return nil, mErr.ErrorOrNil()
}

func (s *CaptureSource) Ping(
	ctx context.Context,
) error {
	info, err := portaudio.DefaultInputDevice()
	if err != nil {
		return err
	}
	logger.Debugf(ctx, "device info: %#+v", info)
	return nil
}

func (s *CaptureSource) SampleRate() types.SampleRate {
	return s.SampleRateValue
}

func (*CaptureSource) Channels() types.Channel {
	return 1
}

func (s *CaptureSource) Start(
	ctx context.Context,
	deliver types.CaptureFunc,
) error {
	ctx, s.CancelFunc = context.WithCancel(ctx)

	if err := s.PortAudioStream.Start(); err != nil {
		return fmt.Errorf("unable to start the stream: %w", err)
	}

	s.WaitGroup.Add(1)
	observability.Go(ctx, func(ctx context.Context) {
		defer s.WaitGroup.Done()
		<-ctx.Done()
		s.PortAudioStream.Abort()
	})
	s.WaitGroup.Add(1)
	observability.Go(ctx, func(ctx context.Context) {
		defer s.WaitGroup.Done()
		defer s.CancelFunc()
		s.captureLoop(ctx, deliver)
	})
	return nil
}

func (s *CaptureSource) captureLoop(
	ctx context.Context,
	deliver types.CaptureFunc,
) (_ret error) {
	logger.Debugf(ctx, "captureLoop")
	defer func() { logger.Debugf(ctx, "/captureLoop: %v", _ret) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		logger.Tracef(ctx, "Read")
		err := s.PortAudioStream.Read()
		logger.Tracef(ctx, "/Read: %v", err)
		if err != nil {
			return fmt.Errorf("unable to read: %w", err)
		}
		deliver(s.Buffer)
	}
}

func (s *CaptureSource) Close() error {
	if s.CancelFunc != nil {
		s.CancelFunc()
	}
	err := s.PortAudioStream.Abort()
	s.WaitGroup.Wait()
	return err
}
