package spectral

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuppressorReducesStationaryNoise(t *testing.T) {
	ctx := context.Background()
	s, err := New()
	require.NoError(t, err)
	defer s.Close()

	rng := rand.New(rand.NewSource(1))
	noiseFrame := func() []float32 {
		frame := make([]float32, frameSize)
		for i := range frame {
			frame[i] = (rng.Float32()*2 - 1) * 0.05
		}
		return frame
	}

	output := make([]float32, frameSize)
	for i := 0; i < warmupFrames; i++ {
		_, err := s.SuppressFrame(ctx, noiseFrame(), output)
		require.NoError(t, err)
	}

	input := noiseFrame()
	vadProb, err := s.SuppressFrame(ctx, input, output)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, vadProb, 0.0)
	assert.LessOrEqual(t, vadProb, 1.0)

	var inEnergy, outEnergy float64
	for i := range input {
		inEnergy += float64(input[i]) * float64(input[i])
		outEnergy += float64(output[i]) * float64(output[i])
		require.False(t, math.IsNaN(float64(output[i])))
		require.False(t, math.IsInf(float64(output[i]), 0))
	}
	assert.Less(t, outEnergy, inEnergy)
}

func TestSuppressorKeepsTone(t *testing.T) {
	ctx := context.Background()
	s, err := New()
	require.NoError(t, err)
	defer s.Close()

	rng := rand.New(rand.NewSource(2))
	output := make([]float32, frameSize)
	for i := 0; i < warmupFrames; i++ {
		frame := make([]float32, frameSize)
		for j := range frame {
			frame[j] = (rng.Float32()*2 - 1) * 0.01
		}
		_, err := s.SuppressFrame(ctx, frame, output)
		require.NoError(t, err)
	}

	// a loud tone well above the learned floor
	input := make([]float32, frameSize)
	for i := range input {
		input[i] = 0.5 * float32(math.Sin(2*math.Pi*1000*float64(i)/float64(sampleRate)))
	}
	vadProb, err := s.SuppressFrame(ctx, input, output)
	require.NoError(t, err)
	assert.Equal(t, 1.0, vadProb)

	var inEnergy, outEnergy float64
	for i := range input {
		inEnergy += float64(input[i]) * float64(input[i])
		outEnergy += float64(output[i]) * float64(output[i])
	}
	// most of the tone's energy survives
	assert.Greater(t, outEnergy, inEnergy*0.5)
}

func TestSuppressorRejectsWrongFrameSize(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	defer s.Close()

	_, err = s.SuppressFrame(context.Background(), make([]float32, frameSize-1), make([]float32, frameSize-1))
	require.Error(t, err)
}
