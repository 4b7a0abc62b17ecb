// Package metrics collects quality numbers of a running denoising
// pipeline over a rolling window of recent frames.
package metrics

import (
	"sync"
	"time"
)

// WindowSize is the amount of recent frames the rolling statistics are
// computed over.
const WindowSize = 100

// minimum amount of observed frames before the model confidence is
// considered meaningful
const confidenceMinFrames = 10

// Collector accumulates per-frame measurements. The write path never
// blocks: if the collector is busy (a Summary is being taken), the
// measurement is dropped rather than stalling the audio path.
type Collector struct {
	locker sync.Mutex

	voiceProbabilities [WindowSize]float64
	latencies          [WindowSize]time.Duration
	reductions         [WindowSize]float64
	pos                int
	count              int

	totalFrames uint64
	peakLatency time.Duration
}

func NewCollector() *Collector {
	return &Collector{}
}

// TryRecordFrame records one frame's measurements. It reports false if
// the collector was busy and the measurement was dropped.
func (c *Collector) TryRecordFrame(
	voiceProbability float64,
	latency time.Duration,
	inputEnergy float64,
	outputEnergy float64,
) bool {
	if !c.locker.TryLock() {
		return false
	}
	defer c.locker.Unlock()

	var reduction float64
	if inputEnergy > 0 {
		reduction = (1 - outputEnergy/inputEnergy) * 100
		if reduction < 0 {
			reduction = 0
		}
		if reduction > 100 {
			reduction = 100
		}
	}

	c.voiceProbabilities[c.pos] = voiceProbability
	c.latencies[c.pos] = latency
	c.reductions[c.pos] = reduction
	c.pos = (c.pos + 1) % WindowSize
	if c.count < WindowSize {
		c.count++
	}

	c.totalFrames++
	if latency > c.peakLatency {
		c.peakLatency = latency
	}
	return true
}

// Reset drops all accumulated measurements.
func (c *Collector) Reset() {
	c.locker.Lock()
	defer c.locker.Unlock()
	c.voiceProbabilities = [WindowSize]float64{}
	c.latencies = [WindowSize]time.Duration{}
	c.reductions = [WindowSize]float64{}
	c.pos = 0
	c.count = 0
	c.totalFrames = 0
	c.peakLatency = 0
}
