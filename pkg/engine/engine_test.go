package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/denoise/pkg/audio"
	"github.com/xaionaro-go/denoise/pkg/frames"
	"github.com/xaionaro-go/denoise/pkg/noisesuppression"
	"github.com/xaionaro-go/denoise/pkg/pipeline"
)

type fakeSource struct {
	sampleRate audio.SampleRate
	channels   audio.Channel
	deliver    audio.CaptureFunc
	closed     bool
}

func (s *fakeSource) Ping(context.Context) error     { return nil }
func (s *fakeSource) SampleRate() audio.SampleRate   { return s.sampleRate }
func (s *fakeSource) Channels() audio.Channel        { return s.channels }
func (s *fakeSource) Close() error                   { s.closed = true; return nil }
func (s *fakeSource) Start(_ context.Context, deliver audio.CaptureFunc) error {
	s.deliver = deliver
	return nil
}

type fakeSink struct {
	sampleRate audio.SampleRate
	channels   audio.Channel
	fill       audio.FillFunc
	closed     bool
}

func (s *fakeSink) Ping(context.Context) error   { return nil }
func (s *fakeSink) SampleRate() audio.SampleRate { return s.sampleRate }
func (s *fakeSink) Channels() audio.Channel      { return s.channels }
func (s *fakeSink) Close() error                 { s.closed = true; return nil }
func (s *fakeSink) Start(_ context.Context, fill audio.FillFunc) error {
	s.fill = fill
	return nil
}

func newTestEngine(t *testing.T, source *fakeSource, sink *fakeSink) *Engine {
	e, err := New(context.Background(), Config{
		Source:     source,
		Sink:       sink,
		Suppressor: noisesuppression.NewDummy(48000, frames.Size),
	})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestNewValidation(t *testing.T) {
	sink := &fakeSink{sampleRate: 48000, channels: 1}
	source := &fakeSource{sampleRate: 48000, channels: 1}

	_, err := New(context.Background(), Config{Sink: sink})
	require.ErrorIs(t, err, ErrNoCaptureSource)

	_, err = New(context.Background(), Config{Source: source})
	require.ErrorIs(t, err, ErrNoPlaybackSink)

	_, err = New(context.Background(), Config{
		Source: &fakeSource{sampleRate: 22050, channels: 1},
		Sink:   sink,
	})
	var errUnsupported frames.ErrUnsupportedSampleRate
	require.ErrorAs(t, err, &errUnsupported)

	_, err = New(context.Background(), Config{
		Source: source,
		Sink:   &fakeSink{sampleRate: 44100, channels: 1},
	})
	require.ErrorAs(t, err, &errUnsupported)
}

func TestEngineEndToEnd(t *testing.T) {
	source := &fakeSource{sampleRate: 48000, channels: 1}
	sink := &fakeSink{sampleRate: 48000, channels: 2}
	e := newTestEngine(t, source, sink)
	require.NotNil(t, source.deliver)
	require.NotNil(t, sink.fill)

	chunk := make([]float32, frames.Size)
	for i := range chunk {
		chunk[i] = 0.1
	}
	for i := 0; i < 4; i++ {
		processedBefore := e.Statistics().TotalFrames
		source.deliver(chunk)
		require.Eventually(t, func() bool {
			return e.Statistics().TotalFrames > processedBefore
		}, time.Second, time.Millisecond)
	}

	out := make([]float32, frames.Size*2)
	sink.fill(out)

	// mono duplicated across both channels, non-silent
	assert.NotZero(t, out[0])
	for idx := 0; idx < len(out); idx += 2 {
		assert.Equal(t, out[idx], out[idx+1])
	}

	// drain the remaining frames, then expect silence on underrun
	for i := 0; i < 3; i++ {
		sink.fill(out)
	}
	sink.fill(out)
	assert.NotZero(t, e.Underruns())
	for _, sample := range out {
		assert.Zero(t, sample)
	}

	assert.NoError(t, e.Err())
}

func TestEngineStereoCaptureDownmix(t *testing.T) {
	source := &fakeSource{sampleRate: 48000, channels: 2}
	sink := &fakeSink{sampleRate: 48000, channels: 1}
	e := newTestEngine(t, source, sink)

	// stereo chunk: the first channel carries signal, the second junk
	chunk := make([]float32, frames.Size*2)
	for i := 0; i < len(chunk); i += 2 {
		chunk[i] = 0.1
		chunk[i+1] = -1
	}
	source.deliver(chunk)
	require.Eventually(t, func() bool {
		return e.Statistics().TotalFrames == 1
	}, time.Second, time.Millisecond)

	out := make([]float32, frames.Size)
	sink.fill(out)
	// everything derives from the first channel's 0.1, nothing from -1
	for _, sample := range out {
		assert.GreaterOrEqual(t, sample, float32(0))
	}
}

func TestEngineResamples44100(t *testing.T) {
	source := &fakeSource{sampleRate: 44100, channels: 1}
	sink := &fakeSink{sampleRate: 48000, channels: 1}
	e := newTestEngine(t, source, sink)

	chunk := make([]float32, 441)
	for i := range chunk {
		chunk[i] = 0.1
	}
	// 441 samples in -> 480 out -> exactly one frame per chunk
	source.deliver(chunk)
	require.Eventually(t, func() bool {
		return e.Statistics().TotalFrames == 1
	}, time.Second, time.Millisecond)
}

func TestEngineConfigure(t *testing.T) {
	source := &fakeSource{sampleRate: 48000, channels: 1}
	sink := &fakeSink{sampleRate: 48000, channels: 1}
	e := newTestEngine(t, source, sink)

	e.UpdateSensitivity(12345)
	assert.Equal(t, pipeline.SensitivityMax, e.Parameters().Sensitivity)

	params := e.Parameters()
	params.AdaptiveMode = false
	e.Configure(params)
	assert.False(t, e.Parameters().AdaptiveMode)
}

func TestEngineClose(t *testing.T) {
	source := &fakeSource{sampleRate: 48000, channels: 1}
	sink := &fakeSink{sampleRate: 48000, channels: 1}
	e := newTestEngine(t, source, sink)

	require.NoError(t, e.Close())
	assert.True(t, source.closed)
	assert.True(t, sink.closed)

	// closing twice is fine
	require.NoError(t, e.Close())

	// the capture callback after shutdown is a no-op
	source.deliver(make([]float32, frames.Size))
	assert.Zero(t, e.Statistics().TotalFrames)
}
