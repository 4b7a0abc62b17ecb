package audio

import (
	"context"
	"time"

	"github.com/xaionaro-go/observability"
)

// PlaybackSinkDummy pretends to be an audio output: it pulls audio at
// the pace a real device would and discards it.
type PlaybackSinkDummy struct {
	sampleRate SampleRate
	channels   Channel
}

var _ PlaybackSink = (*PlaybackSinkDummy)(nil)

func NewPlaybackSinkDummy(
	sampleRate SampleRate,
	channels Channel,
) *PlaybackSinkDummy {
	return &PlaybackSinkDummy{
		sampleRate: sampleRate,
		channels:   channels,
	}
}

func (*PlaybackSinkDummy) Ping(context.Context) error {
	return nil
}

func (s *PlaybackSinkDummy) SampleRate() SampleRate {
	return s.sampleRate
}

func (s *PlaybackSinkDummy) Channels() Channel {
	return s.channels
}

func (s *PlaybackSinkDummy) Start(
	ctx context.Context,
	fill FillFunc,
) error {
	interval := 10 * time.Millisecond
	buf := make([]float32, int(uint64(s.sampleRate)*uint64(s.channels)*uint64(interval)/uint64(time.Second)))
	observability.Go(ctx, func(ctx context.Context) {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fill(buf)
			}
		}
	})
	return nil
}

func (*PlaybackSinkDummy) Close() error {
	return nil
}
