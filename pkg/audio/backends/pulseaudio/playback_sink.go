package pulseaudio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
	"github.com/xaionaro-go/denoise/pkg/audio"
	"github.com/xaionaro-go/denoise/pkg/audio/types"
)

const (
	playbackLatency = 100 * time.Millisecond
)

type PlaybackSink struct {
	PulseClient *pulse.Client
	PulseStream *pulse.PlaybackStream
	CancelFunc  context.CancelFunc
	WaitGroup   sync.WaitGroup
}

var _ types.PlaybackSink = (*PlaybackSink)(nil)

func NewPlaybackSink() (*PlaybackSink, error) {
	client, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("unable to open a client to PulseAudio: %w", err)
	}

	return &PlaybackSink{
		PulseClient: client,
	}, nil
}

func (s *PlaybackSink) Ping(ctx context.Context) error {
	sink, err := s.PulseClient.DefaultSink()
	if err != nil {
		return fmt.Errorf("unable to get the default sink: %w", err)
	}
	logger.Debugf(ctx, "the default sink is %#+v", sink)
	return nil
}

func (s *PlaybackSink) SampleRate() types.SampleRate {
	return 48000
}

func (s *PlaybackSink) Channels() types.Channel {
	return 1
}

type playbackReader struct {
	Fill types.FillFunc
}

func (r *playbackReader) Format() byte {
	return proto.FormatFloat32LE
}

func (r *playbackReader) Read(b []byte) (int, error) {
	sampleBytes := len(b) / 4 * 4
	if sampleBytes > 0 {
		r.Fill(audio.Float32sOfBytes(b[:sampleBytes]))
	}
	return sampleBytes, nil
}

func (s *PlaybackSink) Start(ctx context.Context, fill types.FillFunc) (_err error) {
	logger.Tracef(ctx, "Start")
	defer func() { logger.Tracef(ctx, "/Start: %v", _err) }()

	ctx, cancelFn := context.WithCancel(ctx)
	s.CancelFunc = cancelFn

	stream, err := s.PulseClient.NewPlayback(
		&playbackReader{Fill: fill},
		pulse.PlaybackLatency(playbackLatency.Seconds()),
		pulse.PlaybackSampleRate(int(s.SampleRate())),
		pulse.PlaybackChannels(proto.ChannelMap{proto.ChannelMono}),
	)
	if err != nil {
		return fmt.Errorf("unable to open a playback stream: %w", err)
	}
	s.PulseStream = stream

	stream.Start()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("unable to start the playback stream: %w", err)
	}

	s.WaitGroup.Add(1)
	go func() {
		defer s.WaitGroup.Done()
		<-ctx.Done()
		stream.Stop()
	}()
	return nil
}

func (s *PlaybackSink) Close() (_err error) {
	defer func() {
		r := recover()
		if r != nil {
			_err = fmt.Errorf("got panic: %v", r)
		}
	}()
	if s.CancelFunc != nil {
		s.CancelFunc()
	}
	s.WaitGroup.Wait()
	if s.PulseStream != nil {
		s.PulseStream.Close()
		s.PulseStream = nil
	}
	s.PulseClient.Close()
	return nil
}
