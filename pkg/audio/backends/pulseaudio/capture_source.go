package pulseaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
	"github.com/xaionaro-go/denoise/pkg/audio"
	"github.com/xaionaro-go/denoise/pkg/audio/types"
)

type CaptureSource struct {
	PulseClient *pulse.Client
	PulseStream *pulse.RecordStream
	CancelFunc  context.CancelFunc
	WaitGroup   sync.WaitGroup
}

var _ types.CaptureSource = (*CaptureSource)(nil)

func NewCaptureSource() (*CaptureSource, error) {
	client, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("unable to open a client to PulseAudio: %w", err)
	}

	return &CaptureSource{
		PulseClient: client,
	}, nil
}

func (s *CaptureSource) Ping(ctx context.Context) error {
	source, err := s.PulseClient.DefaultSource()
	if err != nil {
		return fmt.Errorf("unable to get the default source: %w", err)
	}
	logger.Debugf(ctx, "the default source is %#+v", source)
	return nil
}

func (s *CaptureSource) SampleRate() types.SampleRate {
	return 48000
}

func (s *CaptureSource) Channels() types.Channel {
	return 1
}

type captureWriter struct {
	Deliver types.CaptureFunc
}

func (w *captureWriter) Format() byte {
	return proto.FormatFloat32LE
}

func (w *captureWriter) Write(b []byte) (int, error) {
	sampleBytes := len(b) / 4 * 4
	if sampleBytes > 0 {
		w.Deliver(audio.Float32sOfBytes(b[:sampleBytes]))
	}
	return len(b), nil
}

func (s *CaptureSource) Start(ctx context.Context, deliver types.CaptureFunc) (_err error) {
	logger.Tracef(ctx, "Start")
	defer func() { logger.Tracef(ctx, "/Start: %v", _err) }()

	ctx, cancelFn := context.WithCancel(ctx)
	s.CancelFunc = cancelFn

	stream, err := s.PulseClient.NewRecord(
		&captureWriter{Deliver: deliver},
		pulse.RecordSampleRate(int(s.SampleRate())),
		pulse.RecordChannels(proto.ChannelMap{proto.ChannelMono}),
	)
	if err != nil {
		return fmt.Errorf("unable to open a recording stream: %w", err)
	}
	s.PulseStream = stream

	stream.Start()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("unable to start the recording stream: %w", err)
	}

	s.WaitGroup.Add(1)
	go func() {
		defer s.WaitGroup.Done()
		<-ctx.Done()
		stream.Stop()
	}()
	return nil
}

func (s *CaptureSource) Close() (_err error) {
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
