// Package pipeline chains the per-frame processing stages: noise gate,
// analysis, the denoising model, adaptive gain and dynamic range
// compression.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/denoise/pkg/analysis"
	"github.com/xaionaro-go/denoise/pkg/metrics"
	"github.com/xaionaro-go/denoise/pkg/noisesuppression"
)

// Result is what the pipeline learned while processing one frame.
type Result struct {
	// VoiceProbability is the denoising model's own voice estimate.
	VoiceProbability float64

	Context analysis.AudioContext
}

// Pipeline processes fixed-size mono frames. ProcessFrame must be
// called from one goroutine at a time; Configure may be called
// concurrently with it.
type Pipeline struct {
	frameSize  int
	suppressor noisesuppression.NoiseSuppressor
	analyzer   *analysis.Analyzer
	gate       *SpectralGate
	compressor *DynamicRangeCompressor

	params     atomic.Pointer[ProcessingParameters]
	stats      Statistics
	modelStats ModelStatistics
	collector  *metrics.Collector

	work []float32
}

// New builds a pipeline around the given suppressor. The suppressor's
// frame size and sample rate define the pipeline's.
func New(
	ctx context.Context,
	suppressor noisesuppression.NoiseSuppressor,
	params ProcessingParameters,
) (*Pipeline, error) {
	if suppressor == nil {
		return nil, fmt.Errorf("no noise suppressor provided")
	}
	frameSize := int(suppressor.FrameSize())
	if frameSize <= 0 {
		return nil, fmt.Errorf("the noise suppressor reported a non-positive frame size: %d", frameSize)
	}
	sampleRate := suppressor.SampleRate()

	detector, err := analysis.NewVoiceDetector(sampleRate, frameSize, params.Sensitivity)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize a voice detector: %w", err)
	}

	p := &Pipeline{
		frameSize:  frameSize,
		suppressor: noisesuppression.NewValidated(suppressor),
		analyzer:   analysis.NewAnalyzer(sampleRate, frameSize, detector),
		gate:       NewSpectralGate(sampleRate),
		compressor: NewDynamicRangeCompressor(sampleRate),
		work:       make([]float32, frameSize),
	}
	p.Configure(params)
	return p, nil
}

func (p *Pipeline) FrameSize() int {
	return p.frameSize
}

// Configure replaces the processing parameters. The update is applied
// atomically between frames.
func (p *Pipeline) Configure(params ProcessingParameters) {
	params.Sensitivity = clampSensitivity(params.Sensitivity)
	p.params.Store(&params)
	p.analyzer.SetSensitivity(params.Sensitivity)
}

// Parameters returns the currently effective parameters.
func (p *Pipeline) Parameters() ProcessingParameters {
	return *p.params.Load()
}

// SetMetricsCollector attaches a collector the pipeline reports each
// frame to. Must be called before the first ProcessFrame.
func (p *Pipeline) SetMetricsCollector(collector *metrics.Collector) {
	p.collector = collector
}

func (p *Pipeline) Statistics() StatisticsSnapshot {
	return p.stats.Snapshot()
}

func (p *Pipeline) ModelStatistics() ModelStatisticsSnapshot {
	return p.modelStats.Snapshot()
}

// ProcessFrame denoises one frame from input into output (both must be
// FrameSize long). A frame of unexpected size passes through untouched.
func (p *Pipeline) ProcessFrame(ctx context.Context, input []float32, output []float32) (Result, error) {
	if len(input) != len(output) {
		return Result{}, fmt.Errorf("lengths of input and output slices are not equal: %d != %d", len(input), len(output))
	}
	if len(input) != p.frameSize {
		logger.Tracef(ctx, "skipping a frame of unexpected size: %d != %d", len(input), p.frameSize)
		copy(output, input)
		return Result{}, nil
	}

	start := time.Now()
	params := p.params.Load()

	copy(p.work, input)
	if params.NoiseGateEnabled {
		p.gate.Process(p.work)
	}

	actx, err := p.analyzer.Analyze(ctx, p.work)
	if err != nil {
		logger.Debugf(ctx, "the analyzer failed on a frame: %v", err)
		actx = analysis.AudioContext{NoiseType: analysis.NoiseTypeUnknown}
	}

	modelStart := time.Now()
	voiceProbability, err := p.suppressor.SuppressFrame(ctx, p.work, output)
	if err != nil {
		logger.Debugf(ctx, "the noise suppressor failed on a frame, bypassing: %v", err)
		copy(output, p.work)
		voiceProbability = 0
	}
	p.modelStats.record(time.Since(modelStart), voiceProbability)

	gain := SimpleGainFor(voiceProbability)
	if params.AdaptiveMode {
		gain = AdaptiveGainFor(voiceProbability, actx)
	}
	for idx := range output {
		output[idx] *= float32(gain)
	}

	if params.DynamicRangeEnabled {
		p.compressor.Process(output)
	}

	elapsed := time.Since(start)
	p.stats.record(elapsed, actx)
	if p.collector != nil {
		p.collector.TryRecordFrame(voiceProbability, elapsed, frameEnergy(input), frameEnergy(output))
	}

	return Result{
		VoiceProbability: voiceProbability,
		Context:          actx,
	}, nil
}

// Close releases the analyzer and the suppressor.
func (p *Pipeline) Close() error {
	if err := p.analyzer.Close(); err != nil {
		return err
	}
	return p.suppressor.Close()
}

func frameEnergy(frame []float32) float64 {
	var energy float64
	for _, sample := range frame {
		energy += float64(sample) * float64(sample)
	}
	return energy
}
