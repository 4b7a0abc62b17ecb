package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/denoise/pkg/analysis"
	"github.com/xaionaro-go/denoise/pkg/metrics"
	"github.com/xaionaro-go/denoise/pkg/noisesuppression"
)

const testFrameSize = 480

func constantFrame(value float32) []float32 {
	frame := make([]float32, testFrameSize)
	for i := range frame {
		frame[i] = value
	}
	return frame
}

func TestSpectralGate(t *testing.T) {
	t.Run("AttackOpensFast", func(t *testing.T) {
		g := NewSpectralGate(48000)

		frame := constantFrame(0.1)
		g.Process(frame)

		// 1ms attack = 48 samples; by the end of the frame the gate is
		// fully open
		assert.Less(t, frame[0], float32(0.01))
		assert.Equal(t, float32(0.1), frame[len(frame)-1])
	})

	t.Run("ReleaseClosesSlowly", func(t *testing.T) {
		g := NewSpectralGate(48000)
		g.Process(constantFrame(0.1)) // open the gate

		quiet := constantFrame(0.001)
		g.Process(quiet)

		// 50ms release: the gate loses only a fifth of its state over
		// one 10ms frame
		assert.Greater(t, quiet[0], float32(0.00099))
		assert.InDelta(t, 0.0008, quiet[len(quiet)-1], 0.00002)
		assert.Greater(t, quiet[0], quiet[len(quiet)-1])
	})

	t.Run("NoiseFloorLearnsOnlyFromQuietFrames", func(t *testing.T) {
		g := NewSpectralGate(48000)
		floorBefore := g.NoiseFloor()

		g.Process(constantFrame(0.5)) // way above the floor
		assert.Equal(t, floorBefore, g.NoiseFloor())

		g.Process(constantFrame(0.0005))
		assert.NotEqual(t, floorBefore, g.NoiseFloor())
	})
}

func TestDynamicRangeCompressor(t *testing.T) {
	c := NewDynamicRangeCompressor(48000)

	frame := constantFrame(0.8)
	c.Process(frame)

	// the envelope needs time to climb over the threshold: the first
	// 141 samples pass untouched, the rest get compressed
	assert.Equal(t, float32(0.8), frame[140])
	assert.Less(t, frame[141], float32(0.8))
	assert.Less(t, frame[len(frame)-1], frame[141])
	// gain reduction is bounded by the 3:1 ratio
	assert.Greater(t, frame[len(frame)-1], float32(0.5))
}

func TestAdaptiveGainFor(t *testing.T) {
	t.Run("SpeechConfidenceInterpolation", func(t *testing.T) {
		actx := analysis.AudioContext{
			NoiseType:        analysis.NoiseTypeUnknown,
			VoiceProbability: 0.5,
		}
		// vad 0.9 over threshold 0.5 -> confidence 0.8
		gain := AdaptiveGainFor(0.9, actx)
		assert.InDelta(t, 0.2+(0.8-0.2)*0.8, gain, 0.0001)
		assert.GreaterOrEqual(t, gain, GainMin)
		assert.LessOrEqual(t, gain, GainMax)
	})

	t.Run("HighAnalyzerConfidenceBoostsSpeech", func(t *testing.T) {
		actx := analysis.AudioContext{
			NoiseType:        analysis.NoiseTypeSpeech,
			VoiceProbability: 0.9,
		}
		gain := AdaptiveGainFor(1.0, actx)
		assert.InDelta(t, 1.0, gain, 0.0001)
	})

	t.Run("LowAnalyzerConfidenceCutsNoise", func(t *testing.T) {
		actx := analysis.AudioContext{
			NoiseType:        analysis.NoiseTypeKeyboard,
			VoiceProbability: 0.1,
		}
		// no speech at all: noise gain halved, then the keyboard
		// penalty, floored at GainMin
		gain := AdaptiveGainFor(0.0, actx)
		assert.InDelta(t, GainMin, gain, 0.0001)
	})

	t.Run("HVACAlwaysDamped", func(t *testing.T) {
		actx := analysis.AudioContext{
			NoiseType:        analysis.NoiseTypeHVAC,
			VoiceProbability: 0.5,
		}
		gain := AdaptiveGainFor(1.0, actx)
		assert.InDelta(t, 0.85*0.9, gain, 0.0001)
	})

	t.Run("NeverOutOfBounds", func(t *testing.T) {
		for _, noiseType := range []analysis.NoiseType{
			analysis.NoiseTypeUnknown,
			analysis.NoiseTypeSilence,
			analysis.NoiseTypeSpeech,
			analysis.NoiseTypeKeyboard,
			analysis.NoiseTypeHVAC,
			analysis.NoiseTypeMusic,
		} {
			for _, vad := range []float64{0, 0.25, 0.5, 0.75, 1} {
				gain := AdaptiveGainFor(vad, analysis.AudioContext{NoiseType: noiseType, VoiceProbability: vad})
				assert.GreaterOrEqual(t, gain, GainMin)
				assert.LessOrEqual(t, gain, GainMax)
			}
		}
	})
}

func TestSimpleGainFor(t *testing.T) {
	assert.Equal(t, 0.8, SimpleGainFor(0.6))
	assert.Equal(t, 0.2, SimpleGainFor(0.5))
}

func TestDefaultProcessingParameters(t *testing.T) {
	params := DefaultProcessingParameters()
	assert.Equal(t, SensitivityDefault, params.Sensitivity)
	assert.True(t, params.AdaptiveMode)
	assert.True(t, params.NoiseGateEnabled)
	assert.True(t, params.DynamicRangeEnabled)
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()

	newPipeline := func(t *testing.T, params ProcessingParameters) *Pipeline {
		p, err := New(ctx, noisesuppression.NewDummy(48000, testFrameSize), params)
		require.NoError(t, err)
		t.Cleanup(func() { p.Close() })
		return p
	}

	t.Run("EndToEnd", func(t *testing.T) {
		p := newPipeline(t, DefaultProcessingParameters())
		collector := metrics.NewCollector()
		p.SetMetricsCollector(collector)

		input := constantFrame(0.1)
		output := make([]float32, testFrameSize)
		var result Result
		var err error
		for i := 0; i < 20; i++ {
			result, err = p.ProcessFrame(ctx, input, output)
			require.NoError(t, err)
		}

		for _, sample := range output {
			require.False(t, math.IsNaN(float64(sample)))
			require.False(t, math.IsInf(float64(sample), 0))
		}
		assert.GreaterOrEqual(t, result.VoiceProbability, 0.0)
		assert.LessOrEqual(t, result.VoiceProbability, 1.0)
		assert.GreaterOrEqual(t, result.Context.VoiceProbability, 0.0)
		assert.LessOrEqual(t, result.Context.VoiceProbability, 1.0)
		assert.NotEqual(t, "invalid", result.Context.NoiseType.String())

		stats := p.Statistics()
		assert.Equal(t, uint64(20), stats.TotalFrames)
		var classified uint64
		for _, count := range stats.NoiseTypeDistribution {
			classified += count
		}
		assert.Equal(t, uint64(20), classified)

		modelStats := p.ModelStatistics()
		assert.Equal(t, uint64(20), modelStats.TotalFrames)

		assert.Equal(t, uint64(20), collector.Summary().FramesProcessed)
	})

	t.Run("UnexpectedFrameSizePassesThrough", func(t *testing.T) {
		p := newPipeline(t, DefaultProcessingParameters())

		input := make([]float32, testFrameSize/2)
		for i := range input {
			input[i] = 0.3
		}
		output := make([]float32, testFrameSize/2)
		_, err := p.ProcessFrame(ctx, input, output)
		require.NoError(t, err)
		assert.Equal(t, input, output)
		assert.Zero(t, p.Statistics().TotalFrames)
	})

	t.Run("MismatchedBuffersRejected", func(t *testing.T) {
		p := newPipeline(t, DefaultProcessingParameters())
		_, err := p.ProcessFrame(ctx, make([]float32, testFrameSize), make([]float32, testFrameSize-1))
		require.Error(t, err)
	})

	t.Run("ConfigureClampsSensitivity", func(t *testing.T) {
		p := newPipeline(t, DefaultProcessingParameters())

		params := p.Parameters()
		params.Sensitivity = 12345
		p.Configure(params)
		assert.Equal(t, SensitivityMax, p.Parameters().Sensitivity)

		params.Sensitivity = 0
		p.Configure(params)
		assert.Equal(t, SensitivityMin, p.Parameters().Sensitivity)
	})

	t.Run("SimpleModeAppliesTwoLevelGain", func(t *testing.T) {
		params := DefaultProcessingParameters()
		params.AdaptiveMode = false
		params.NoiseGateEnabled = false
		params.DynamicRangeEnabled = false
		p := newPipeline(t, params)

		// the dummy suppressor always reports voice
		input := constantFrame(0.25)
		output := make([]float32, testFrameSize)
		_, err := p.ProcessFrame(ctx, input, output)
		require.NoError(t, err)
		assert.InDelta(t, 0.25*0.8, float64(output[0]), 0.0001)
	})
}
