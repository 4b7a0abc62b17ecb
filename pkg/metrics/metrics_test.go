package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRollingWindow(t *testing.T) {
	c := NewCollector()

	// 101 frames; the first one must fall out of the window
	require.True(t, c.TryRecordFrame(1.0, time.Millisecond, 1, 1))
	for i := 0; i < WindowSize; i++ {
		require.True(t, c.TryRecordFrame(0.5, time.Millisecond, 1, 0.5))
	}

	summary := c.Summary()
	assert.Equal(t, uint64(WindowSize+1), summary.FramesProcessed)
	assert.InDelta(t, 0.5, summary.AverageVoiceProbability, 0.0001)
	assert.InDelta(t, 50, summary.NoiseReductionPercent, 0.0001)
	assert.Equal(t, time.Millisecond, summary.AverageLatency)
	assert.Equal(t, time.Millisecond, summary.PeakLatency)

	// identical probabilities, zero deviation
	assert.InDelta(t, 1.0, summary.ModelConfidence, 0.0001)
	assert.Equal(t, StatusExcellent, summary.Status)
}

func TestCollectorConfidenceNeedsEnoughFrames(t *testing.T) {
	c := NewCollector()
	for i := 0; i < confidenceMinFrames-1; i++ {
		require.True(t, c.TryRecordFrame(0.9, time.Millisecond, 1, 1))
	}
	summary := c.Summary()
	assert.Zero(t, summary.ModelConfidence)
	assert.Equal(t, StatusPoor, summary.Status)
}

func TestCollectorEmpty(t *testing.T) {
	c := NewCollector()
	summary := c.Summary()
	assert.Zero(t, summary.FramesProcessed)
	assert.Zero(t, summary.AverageVoiceProbability)
	assert.Equal(t, float64(100), summary.EstimatedFPS)
	assert.Equal(t, StatusPoor, summary.Status)
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector()
	for i := 0; i < 20; i++ {
		require.True(t, c.TryRecordFrame(0.7, time.Millisecond, 1, 0.2))
	}
	c.Reset()
	summary := c.Summary()
	assert.Zero(t, summary.FramesProcessed)
	assert.Zero(t, summary.PeakLatency)
}

func TestStatusFromConfidence(t *testing.T) {
	assert.Equal(t, StatusExcellent, StatusFromConfidence(0.81))
	assert.Equal(t, StatusGood, StatusFromConfidence(0.7))
	assert.Equal(t, StatusFair, StatusFromConfidence(0.5))
	assert.Equal(t, StatusPoor, StatusFromConfidence(0.4))
}

func TestNoiseReductionClamped(t *testing.T) {
	c := NewCollector()
	// output louder than input, reduction clamps at zero
	require.True(t, c.TryRecordFrame(0.5, time.Millisecond, 1, 2))
	summary := c.Summary()
	assert.Zero(t, summary.NoiseReductionPercent)
}
