// Package engine wires an audio capture source, the denoising
// pipeline and a playback sink into a running real-time loop.
//
// Audio flows through three decoupled stages: the capture callback
// pushes chunks into a bounded channel, the processing goroutine
// reassembles them into frames and runs the pipeline, and the playback
// callback drains processed frames from a ring buffer. Freshness wins
// over completeness everywhere: when a stage cannot keep up, audio is
// dropped instead of accumulating latency.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/iamcalledrob/circular"
	"github.com/xaionaro-go/denoise/pkg/audio"
	"github.com/xaionaro-go/denoise/pkg/frames"
	"github.com/xaionaro-go/denoise/pkg/metrics"
	"github.com/xaionaro-go/denoise/pkg/noisesuppression"
	"github.com/xaionaro-go/denoise/pkg/pipeline"
	"github.com/xaionaro-go/observability"
)

const (
	// chunkChannelCapacity bounds the queues between the audio
	// callbacks and the processing goroutine.
	chunkChannelCapacity = 4

	// outputBufferDuration is how much processed audio the playback
	// ring buffer can hold.
	outputBufferDuration = 100 * time.Millisecond
)

var (
	ErrNoCaptureSource = errors.New("no capture source provided")
	ErrNoPlaybackSink  = errors.New("no playback sink provided")
)

// Config describes what an Engine runs on. The engine takes ownership
// of the source, the sink and the suppressor: they are closed together
// with the engine.
type Config struct {
	// Source is where raw audio comes from. Required.
	Source audio.CaptureSource

	// Sink is where denoised audio goes. Required; it must run at the
	// model's sample rate.
	Sink audio.PlaybackSink

	// Suppressor is the denoising model; when nil the best registered
	// implementation is picked once at construction.
	Suppressor noisesuppression.NoiseSuppressor

	// Parameters are the initial processing parameters; when nil the
	// defaults are used.
	Parameters *pipeline.ProcessingParameters
}

type Engine struct {
	source    audio.CaptureSource
	sink      audio.PlaybackSink
	pipeline  *pipeline.Pipeline
	collector *metrics.Collector
	resampler *frames.Resampler

	ctx        context.Context
	cancelFunc context.CancelFunc
	waitGroup  sync.WaitGroup
	closeOnce  sync.Once

	inputCh  chan []float32
	outputCh chan []float32

	// capture-callback scratch, only touched from the capture callback
	downmixBuf  []float32
	resampleBuf []float32

	outputBufferLocker sync.Mutex
	outputBuffer       *circular.Buffer
	fillScratch        []byte

	inputDrops  atomic.Uint64
	outputDrops atomic.Uint64
	underruns   atomic.Uint64

	errLocker   sync.Mutex
	resultError error
}

// New builds and starts an engine. On success audio flows until Close
// is called or ctx is cancelled.
func New(ctx context.Context, cfg Config) (_ *Engine, _err error) {
	logger.Tracef(ctx, "New")
	defer func() { logger.Tracef(ctx, "/New: %v", _err) }()

	if cfg.Source == nil {
		return nil, ErrNoCaptureSource
	}
	if cfg.Sink == nil {
		return nil, ErrNoPlaybackSink
	}
	if cfg.Sink.SampleRate() != frames.ModelSampleRate {
		return nil, frames.ErrUnsupportedSampleRate{SampleRate: cfg.Sink.SampleRate()}
	}

	resampler, err := frames.NewResampler(cfg.Source.SampleRate())
	if err != nil {
		return nil, err
	}

	suppressor := cfg.Suppressor
	if suppressor == nil {
		suppressor, err = noisesuppression.NewAuto(ctx)
		if err != nil {
			return nil, err
		}
	}

	params := pipeline.DefaultProcessingParameters()
	if cfg.Parameters != nil {
		params = *cfg.Parameters
	}

	p, err := pipeline.New(ctx, suppressor, params)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the pipeline: %w", err)
	}

	collector := metrics.NewCollector()
	p.SetMetricsCollector(collector)

	outputBufferSize := int(uint64(frames.ModelSampleRate) * 4 * uint64(outputBufferDuration) / uint64(time.Second))

	ctx, cancelFunc := context.WithCancel(ctx)
	e := &Engine{
		source:       cfg.Source,
		sink:         cfg.Sink,
		pipeline:     p,
		collector:    collector,
		resampler:    resampler,
		ctx:          ctx,
		cancelFunc:   cancelFunc,
		inputCh:      make(chan []float32, chunkChannelCapacity),
		outputCh:     make(chan []float32, chunkChannelCapacity),
		outputBuffer: circular.NewBuffer(outputBufferSize),
		fillScratch:  make([]byte, outputBufferSize),
	}

	e.waitGroup.Add(1)
	observability.Go(ctx, func(ctx context.Context) {
		defer e.waitGroup.Done()
		defer cancelFunc()
		if err := e.processLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.setError(fmt.Errorf("got an error from the processing loop: %w", err))
		}
	})

	if err := cfg.Source.Start(ctx, e.onCaptureChunk); err != nil {
		e.Close()
		return nil, fmt.Errorf("unable to start capturing: %w", err)
	}
	if err := cfg.Sink.Start(ctx, e.onFill); err != nil {
		e.Close()
		return nil, fmt.Errorf("unable to start playback: %w", err)
	}
	return e, nil
}

// onCaptureChunk runs on the capture backend's callback and must never
// block: when the processing goroutine lags behind, the chunk is
// dropped.
func (e *Engine) onCaptureChunk(chunk []float32) {
	if e.ctx.Err() != nil {
		return
	}

	e.downmixBuf = frames.DownmixMono(chunk, e.source.Channels(), e.downmixBuf[:0])
	e.resampleBuf = e.resampler.Resample(e.downmixBuf, e.resampleBuf[:0])
	if len(e.resampleBuf) == 0 {
		return
	}

	buf := make([]float32, len(e.resampleBuf))
	copy(buf, e.resampleBuf)
	select {
	case e.inputCh <- buf:
	default:
		e.inputDrops.Add(1)
	}
}

func (e *Engine) processLoop(ctx context.Context) (_err error) {
	logger.Tracef(ctx, "processLoop")
	defer func() { logger.Tracef(ctx, "/processLoop: %v", _err) }()

	accumulator := frames.NewAccumulator(e.pipeline.FrameSize())
	frame := make([]float32, e.pipeline.FrameSize())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk := <-e.inputCh:
			accumulator.Push(chunk)
		}

		for accumulator.TakeFrame(frame) {
			output := make([]float32, len(frame))
			if _, err := e.pipeline.ProcessFrame(ctx, frame, output); err != nil {
				return err
			}
			select {
			case e.outputCh <- output:
			default:
				e.outputDrops.Add(1)
			}
		}
	}
}

// onFill runs on the playback backend's callback and must never block:
// it serves from the ring buffer and pads with silence on underrun.
func (e *Engine) onFill(out []float32) {
	if e.ctx.Err() != nil {
		for idx := range out {
			out[idx] = 0
		}
		return
	}

	e.outputBufferLocker.Lock()
	defer e.outputBufferLocker.Unlock()

	// move whatever the processing goroutine produced into the ring
drain:
	for {
		select {
		case processed := <-e.outputCh:
			if _, err := e.outputBuffer.Write(audio.BytesOfFloat32s(processed)); err != nil {
				if errors.Is(err, circular.ErrNoSpace) {
					e.outputDrops.Add(1)
					break drain
				}
				e.setError(fmt.Errorf("unable to write to the output buffer: %w", err))
				break drain
			}
		default:
			break drain
		}
	}

	channels := int(e.sink.Channels())
	if channels < 1 {
		channels = 1
	}
	needSamples := len(out) / channels

	scratch := e.fillScratch
	if needSamples*4 > len(scratch) {
		scratch = make([]byte, needSamples*4)
		e.fillScratch = scratch
	}
	n, err := e.outputBuffer.Read(scratch[:needSamples*4])
	if err != nil && !errors.Is(err, io.EOF) {
		e.setError(fmt.Errorf("unable to read from the output buffer: %w", err))
		n = 0
	}
	mono := audio.Float32sOfBytes(scratch[:n])
	if len(mono) < needSamples {
		e.underruns.Add(1)
	}

	// duplicate the mono samples across all sink channels
	for idx := 0; idx < needSamples; idx++ {
		var sample float32
		if idx < len(mono) {
			sample = mono[idx]
		}
		for ch := 0; ch < channels; ch++ {
			out[idx*channels+ch] = sample
		}
	}
	for idx := needSamples * channels; idx < len(out); idx++ {
		out[idx] = 0
	}
}

// UpdateSensitivity changes the speech sensitivity; the value is
// clamped to the supported range and applied from the next frame on.
func (e *Engine) UpdateSensitivity(sensitivity float64) {
	params := e.pipeline.Parameters()
	params.Sensitivity = sensitivity
	e.pipeline.Configure(params)
}

// Configure replaces the whole set of processing parameters.
func (e *Engine) Configure(params pipeline.ProcessingParameters) {
	e.pipeline.Configure(params)
}

func (e *Engine) Parameters() pipeline.ProcessingParameters {
	return e.pipeline.Parameters()
}

// Metrics returns the engine's rolling quality metrics.
func (e *Engine) Metrics() *metrics.Collector {
	return e.collector
}

func (e *Engine) Statistics() pipeline.StatisticsSnapshot {
	return e.pipeline.Statistics()
}

func (e *Engine) ModelStatistics() pipeline.ModelStatisticsSnapshot {
	return e.pipeline.ModelStatistics()
}

// InputDrops reports how many capture chunks were dropped because the
// processing goroutine lagged behind.
func (e *Engine) InputDrops() uint64 {
	return e.inputDrops.Load()
}

// OutputDrops reports how many processed frames were dropped because
// playback lagged behind.
func (e *Engine) OutputDrops() uint64 {
	return e.outputDrops.Load()
}

// Underruns reports how often playback ran dry and was padded with
// silence.
func (e *Engine) Underruns() uint64 {
	return e.underruns.Load()
}

func (e *Engine) setError(err error) {
	e.errLocker.Lock()
	defer e.errLocker.Unlock()
	if e.resultError == nil {
		e.resultError = err
	}
}

// Err returns the first fatal error the engine encountered, if any.
func (e *Engine) Err() error {
	e.errLocker.Lock()
	defer e.errLocker.Unlock()
	return e.resultError
}

// Close stops the audio flow and releases the source, the sink and the
// pipeline. It is safe to call multiple times.
func (e *Engine) Close() error {
	var mErr *multierror.Error
	e.closeOnce.Do(func() {
		e.cancelFunc()
		e.waitGroup.Wait()
		if err := e.source.Close(); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to close the capture source: %w", err))
		}
		if err := e.sink.Close(); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to close the playback sink: %w", err))
		}
		if err := e.pipeline.Close(); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to close the pipeline: %w", err))
		}
	})
	return mErr.ErrorOrNil()
}
