package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/jfreymuth/oggvorbis"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/denoise/pkg/analysis"
	"github.com/xaionaro-go/denoise/pkg/audio"
	"github.com/xaionaro-go/denoise/pkg/frames"
	"github.com/xaionaro-go/denoise/pkg/noisesuppression"
	_ "github.com/xaionaro-go/denoise/pkg/noisesuppression/implementations/rnnoise"
	_ "github.com/xaionaro-go/denoise/pkg/noisesuppression/implementations/spectral"
	"github.com/xaionaro-go/denoise/pkg/pipeline"
)

// raw (non-Ogg) input is expected in this format:
const (
	rawSampleRate = audio.SampleRate(48000)
	rawChannels   = audio.Channel(1)
)

func main() {
	loggerLevel := logger.LevelDebug
	pflag.Var(&loggerLevel, "log-level", "Log level")
	sensitivity := pflag.Float64("sensitivity", pipeline.SensitivityDefault, "voice detection sensitivity")
	simpleGain := pflag.Bool("simple-gain", false, "use the two-level gain instead of the adaptive one")
	pflag.Parse()

	if pflag.NArg() != 2 {
		panic(fmt.Errorf("expected exactly two arguments: <input-file> <output-file>"))
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	input, err := os.ReadFile(pflag.Arg(0))
	assertNoError(err)

	samples, sampleRate, channels, err := decodeInput(input)
	assertNoError(err)
	logger.Infof(ctx, "input: %d samples, %d Hz, %d channel(s)", len(samples), sampleRate, channels)

	mono := frames.DownmixMono(samples, channels, nil)

	resampler, err := frames.NewResampler(sampleRate)
	assertNoError(err)
	mono = resampler.Resample(mono, nil)

	suppressor, err := noisesuppression.NewAuto(ctx)
	assertNoError(err)

	params := pipeline.DefaultProcessingParameters()
	params.Sensitivity = *sensitivity
	params.AdaptiveMode = !*simpleGain

	p, err := pipeline.New(ctx, suppressor, params)
	assertNoError(err)
	defer func() {
		assertNoError(p.Close())
	}()

	outputFile, err := os.OpenFile(pflag.Arg(1), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	assertNoError(err)
	wc := datacounter.NewWriterCounter(outputFile)

	accumulator := frames.NewAccumulator(frames.Size)
	accumulator.Push(mono)

	inputFrame := make([]float32, frames.Size)
	outputFrame := make([]float32, frames.Size)
	lastNoiseType := analysis.NoiseTypeUnknown
	for accumulator.TakeFrame(inputFrame) {
		result, err := p.ProcessFrame(ctx, inputFrame, outputFrame)
		assertNoError(err)
		lastNoiseType = result.Context.NoiseType

		_, err = wc.Write(audio.BytesOfFloat32s(outputFrame))
		assertNoError(err)
	}

	// The tail is shorter than one frame, so the model cannot see it.
	// Instead of dropping it we fade it out.
	if tail := accumulator.Pending(); tail > 0 {
		padded := make([]float32, frames.Size)
		accumulator.Push(padded[:frames.Size-tail])
		accumulator.TakeFrame(padded)
		gain := pipeline.FadeGainFor(lastNoiseType)
		for idx := range padded[:tail] {
			fade := 1 - float64(idx)/float64(tail)
			padded[idx] *= float32(gain * fade)
		}
		_, err = wc.Write(audio.BytesOfFloat32s(padded[:tail]))
		assertNoError(err)
	}

	assertNoError(outputFile.Close())

	stats := p.Statistics()
	logger.Infof(ctx,
		"wrote %d bytes: %d frames, avg processing time %v, avg voice probability %.2f",
		wc.Count(), stats.TotalFrames, stats.AverageProcessingTime, stats.AverageVoiceProbability,
	)
}

// decodeInput understands Ogg/Vorbis files and falls back to raw
// float32 LE PCM for everything else.
func decodeInput(input []byte) ([]float32, audio.SampleRate, audio.Channel, error) {
	if bytes.HasPrefix(input, []byte("OggS")) {
		samples, format, err := oggvorbis.ReadAll(bytes.NewReader(input))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("unable to decode the Ogg/Vorbis input: %w", err)
		}
		return samples, audio.SampleRate(format.SampleRate), audio.Channel(format.Channels), nil
	}

	if len(input)%4 != 0 {
		return nil, 0, 0, fmt.Errorf("the raw input length is not a multiple of the sample size: %d", len(input))
	}
	return audio.Float32sOfBytes(input), rawSampleRate, rawChannels, nil
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
