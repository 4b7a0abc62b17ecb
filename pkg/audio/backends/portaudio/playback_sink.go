package portaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/gordonklaus/portaudio"
	"github.com/xaionaro-go/denoise/pkg/audio/types"
	"github.com/xaionaro-go/observability"
)

type PlaybackSink struct {
	PortAudioStream *portaudio.Stream
	Buffer          []float32
	CancelFunc      context.CancelFunc
	WaitGroup       sync.WaitGroup
}

var _ types.PlaybackSink = (*PlaybackSink)(nil)

// NewPlaybackSink opens the default output device mono at the model's
// native rate.
func NewPlaybackSink() (*PlaybackSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	sampleRate := types.SampleRate(48000)
	bufferItemsCount := int(ChunkDuration.Seconds() * float64(sampleRate))
	buf := make([]float32, bufferItemsCount)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), bufferItemsCount, &buf)
	if err != nil {
		return nil, fmt.Errorf("unable to open an output stream at %dHz: %w", sampleRate, err)
	}
	return &PlaybackSink{
		PortAudioStream: stream,
		Buffer:          buf,
	}, nil
}

func (s *PlaybackSink) Ping(
	ctx context.Context,
) error {
	info, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return err
	}
	logger.Debugf(ctx, "device info: %#+v", info)
	return nil
}

func (*PlaybackSink) SampleRate() types.SampleRate {
	return 48000
}

func (*PlaybackSink) Channels() types.Channel {
	return 1
}

func (s *PlaybackSink) Start(
	ctx context.Context,
	fill types.FillFunc,
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
		s.playbackLoop(ctx, fill)
	})
	return nil
}

func (s *PlaybackSink) playbackLoop(
	ctx context.Context,
	fill types.FillFunc,
) (_ret error) {
	logger.Debugf(ctx, "playbackLoop")
	defer func() { logger.Debugf(ctx, "/playbackLoop: %v", _ret) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fill(s.Buffer)

		logger.Tracef(ctx, "Write")
		err := s.PortAudioStream.Write()
		logger.Tracef(ctx, "/Write: %v", err)
		if err != nil {
			return fmt.Errorf("unable to write: %w", err)
		}
	}
}

func (s *PlaybackSink) Close() error {
	if s.CancelFunc != nil {
		s.CancelFunc()
	}
	err := s.PortAudioStream.Abort()
	s.WaitGroup.Wait()
	return err
}
