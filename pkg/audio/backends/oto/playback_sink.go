package oto

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/denoise/pkg/audio"
	"github.com/xaionaro-go/denoise/pkg/audio/types"
)

// Unfortunately, `oto` does not allow to initialize a context multiple
// times, so we cannot change the context every time a different
// sampleRate, channels or bufferSize are given. As a result, we've just
// chosen reasonable values and expect them always :(
const (
	SampleRate = 48000
	Channels   = 1
	BufferSize = 100 * time.Millisecond
)

var (
	otoContextLocker sync.Mutex
	otoContext       *oto.Context
)

func getOtoContext() (*oto.Context, error) {
	otoContextLocker.Lock()
	defer otoContextLocker.Unlock()
	if otoContext != nil {
		return otoContext, nil
	}

	otoCtx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize an oto context: %w", err)
	}
	<-readyChan

	otoContext = otoCtx
	return otoContext, nil
}

type PlaybackSink struct {
	OtoCtx     *oto.Context
	OtoPlayer  *oto.Player
	CancelFunc context.CancelFunc
}

var _ types.PlaybackSink = (*PlaybackSink)(nil)

func NewPlaybackSink() (*PlaybackSink, error) {
	otoCtx, err := getOtoContext()
	if err != nil {
		return nil, fmt.Errorf("unable to get an oto context: %w", err)
	}

	return &PlaybackSink{
		OtoCtx: otoCtx,
	}, nil
}

func (s *PlaybackSink) Ping(context.Context) error {
	// do not know how to do that, yet
	return nil
}

func (s *PlaybackSink) SampleRate() types.SampleRate {
	return SampleRate
}

func (s *PlaybackSink) Channels() types.Channel {
	return Channels
}

type playbackReader struct {
	Context context.Context
	Fill    types.FillFunc
}

func (r *playbackReader) Read(b []byte) (int, error) {
	if r.Context.Err() != nil {
		return 0, r.Context.Err()
	}
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

	player := s.OtoCtx.NewPlayer(&playbackReader{
		Context: ctx,
		Fill:    fill,
	})
	player.Play()
	s.OtoPlayer = player
	return nil
}

func (s *PlaybackSink) Close() error {
	if s.CancelFunc != nil {
		s.CancelFunc()
	}
	if s.OtoPlayer != nil {
		err := s.OtoPlayer.Close()
		s.OtoPlayer = nil
		if err != nil {
			return fmt.Errorf("unable to close the player: %w", err)
		}
	}
	return nil
}
