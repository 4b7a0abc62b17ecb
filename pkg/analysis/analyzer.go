package analysis

import (
	"context"
	"sync"

	"github.com/xaionaro-go/denoise/pkg/audio"
)

const voiceProbabilityHistoryLength = 10

// Analyzer combines voice activity detection with spectral feature
// extraction and classification into one per-frame pass.
type Analyzer struct {
	detector VoiceDetector
	spectral *SpectralAnalyzer

	historyLocker sync.Mutex
	history       []float64
	historyPos    int
}

// NewAnalyzer wraps the given voice detector. Voice probabilities are
// smoothed with a moving average over the last few frames before
// classification.
func NewAnalyzer(
	sampleRate audio.SampleRate,
	frameSize int,
	detector VoiceDetector,
) *Analyzer {
	return &Analyzer{
		detector: detector,
		spectral: NewSpectralAnalyzer(sampleRate, frameSize),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, frame []float32) (AudioContext, error) {
	rawProbability, err := a.detector.DetectVoice(ctx, frame)
	if err != nil {
		return AudioContext{}, err
	}
	voiceProbability := a.smooth(rawProbability)

	profile := a.spectral.Analyze(frame)
	noiseType := Classify(voiceProbability, profile)

	return AudioContext{
		VoiceProbability: voiceProbability,
		NoiseType:        noiseType,
		Profile:          profile,
		RecommendedGain:  RecommendedGain(noiseType, voiceProbability),
	}, nil
}

func (a *Analyzer) smooth(rawProbability float64) float64 {
	a.historyLocker.Lock()
	defer a.historyLocker.Unlock()

	if len(a.history) < voiceProbabilityHistoryLength {
		a.history = append(a.history, rawProbability)
	} else {
		a.history[a.historyPos] = rawProbability
		a.historyPos = (a.historyPos + 1) % len(a.history)
	}

	var sum float64
	for _, v := range a.history {
		sum += v
	}
	return sum / float64(len(a.history))
}

func (a *Analyzer) SetSensitivity(sensitivity float64) {
	a.detector.SetSensitivity(sensitivity)
}

func (a *Analyzer) Close() error {
	return a.detector.Close()
}
