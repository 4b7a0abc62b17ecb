package pipeline

import (
	"sync"
	"time"

	"github.com/xaionaro-go/denoise/pkg/analysis"
)

// Statistics aggregates per-frame processing results over the lifetime
// of a pipeline.
type Statistics struct {
	locker                  sync.Mutex
	totalFrames             uint64
	averageProcessingTime   time.Duration
	peakProcessingTime      time.Duration
	averageVoiceProbability float64
	noiseTypes              map[analysis.NoiseType]uint64
}

type StatisticsSnapshot struct {
	TotalFrames             uint64
	AverageProcessingTime   time.Duration
	PeakProcessingTime      time.Duration
	AverageVoiceProbability float64

	// NoiseTypeDistribution counts how many frames were classified as
	// each noise type.
	NoiseTypeDistribution map[analysis.NoiseType]uint64
}

func (s *Statistics) record(processingTime time.Duration, actx analysis.AudioContext) {
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.noiseTypes == nil {
		s.noiseTypes = map[analysis.NoiseType]uint64{}
	}
	s.totalFrames++
	n := float64(s.totalFrames)
	s.averageProcessingTime += time.Duration(float64(processingTime-s.averageProcessingTime) / n)
	if processingTime > s.peakProcessingTime {
		s.peakProcessingTime = processingTime
	}
	s.averageVoiceProbability += (actx.VoiceProbability - s.averageVoiceProbability) / n
	s.noiseTypes[actx.NoiseType]++
}

func (s *Statistics) Snapshot() StatisticsSnapshot {
	s.locker.Lock()
	defer s.locker.Unlock()

	noiseTypes := make(map[analysis.NoiseType]uint64, len(s.noiseTypes))
	for noiseType, count := range s.noiseTypes {
		noiseTypes[noiseType] = count
	}
	return StatisticsSnapshot{
		TotalFrames:             s.totalFrames,
		AverageProcessingTime:   s.averageProcessingTime,
		PeakProcessingTime:      s.peakProcessingTime,
		AverageVoiceProbability: s.averageVoiceProbability,
		NoiseTypeDistribution:   noiseTypes,
	}
}

// ModelStatistics aggregates the denoising model's own numbers,
// separately from the whole-pipeline Statistics.
type ModelStatistics struct {
	locker                  sync.Mutex
	totalFrames             uint64
	averageInferenceTime    time.Duration
	peakInferenceTime       time.Duration
	averageVoiceProbability float64
}

type ModelStatisticsSnapshot struct {
	TotalFrames             uint64
	AverageInferenceTime    time.Duration
	PeakInferenceTime       time.Duration
	AverageVoiceProbability float64
}

func (s *ModelStatistics) record(inferenceTime time.Duration, voiceProbability float64) {
	s.locker.Lock()
	defer s.locker.Unlock()

	s.totalFrames++
	n := float64(s.totalFrames)
	s.averageInferenceTime += time.Duration(float64(inferenceTime-s.averageInferenceTime) / n)
	if inferenceTime > s.peakInferenceTime {
		s.peakInferenceTime = inferenceTime
	}
	s.averageVoiceProbability += (voiceProbability - s.averageVoiceProbability) / n
}

func (s *ModelStatistics) Snapshot() ModelStatisticsSnapshot {
	s.locker.Lock()
	defer s.locker.Unlock()

	return ModelStatisticsSnapshot{
		TotalFrames:             s.totalFrames,
		AverageInferenceTime:    s.averageInferenceTime,
		PeakInferenceTime:       s.peakInferenceTime,
		AverageVoiceProbability: s.averageVoiceProbability,
	}
}
