package metrics

import (
	"fmt"
	"math"
	"time"
)

// Status is a coarse label of how well the denoising model performs,
// derived from the model confidence.
type Status int

const (
	StatusPoor = Status(iota)
	StatusFair
	StatusGood
	StatusExcellent
)

func (s Status) String() string {
	switch s {
	case StatusPoor:
		return "poor"
	case StatusFair:
		return "fair"
	case StatusGood:
		return "good"
	case StatusExcellent:
		return "excellent"
	}
	return "invalid"
}

func StatusFromConfidence(confidence float64) Status {
	switch {
	case confidence > 0.8:
		return StatusExcellent
	case confidence > 0.6:
		return StatusGood
	case confidence > 0.4:
		return StatusFair
	}
	return StatusPoor
}

// Summary is a snapshot of the rolling statistics.
type Summary struct {
	FramesProcessed         uint64
	AverageVoiceProbability float64
	AverageLatency          time.Duration
	PeakLatency             time.Duration

	// ModelConfidence estimates how stable the model's voice decisions
	// are: 1 minus the standard deviation of recent probabilities.
	ModelConfidence float64

	NoiseReductionPercent float64

	// EstimatedFPS is how many frames per second the pipeline could
	// process at the observed average latency.
	EstimatedFPS float64

	Status Status
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"frames:%d vad:%.2f latency:%v(avg)/%v(peak) confidence:%.2f reduction:%.0f%% fps:%.0f status:%s",
		s.FramesProcessed,
		s.AverageVoiceProbability,
		s.AverageLatency,
		s.PeakLatency,
		s.ModelConfidence,
		s.NoiseReductionPercent,
		s.EstimatedFPS,
		s.Status,
	)
}

// Summary computes the rolling statistics over the window.
func (c *Collector) Summary() Summary {
	c.locker.Lock()
	defer c.locker.Unlock()

	summary := Summary{
		FramesProcessed: c.totalFrames,
		PeakLatency:     c.peakLatency,
		EstimatedFPS:    100,
	}
	if c.count == 0 {
		summary.Status = StatusFromConfidence(0)
		return summary
	}

	var vadSum, reductionSum float64
	var latencySum time.Duration
	for i := 0; i < c.count; i++ {
		vadSum += c.voiceProbabilities[i]
		reductionSum += c.reductions[i]
		latencySum += c.latencies[i]
	}
	n := float64(c.count)
	summary.AverageVoiceProbability = vadSum / n
	summary.NoiseReductionPercent = reductionSum / n
	summary.AverageLatency = time.Duration(float64(latencySum) / n)

	if c.count >= confidenceMinFrames {
		var varianceSum float64
		for i := 0; i < c.count; i++ {
			d := c.voiceProbabilities[i] - summary.AverageVoiceProbability
			varianceSum += d * d
		}
		confidence := 1 - math.Sqrt(varianceSum/n)
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		summary.ModelConfidence = confidence
	}

	if summary.AverageLatency > 0 {
		summary.EstimatedFPS = 1 / summary.AverageLatency.Seconds()
	}
	summary.Status = StatusFromConfidence(summary.ModelConfidence)
	return summary
}
