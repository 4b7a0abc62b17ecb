package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/denoise/pkg/audio"
	_ "github.com/xaionaro-go/denoise/pkg/audio/backends/oto"
	_ "github.com/xaionaro-go/denoise/pkg/audio/backends/portaudio"
	_ "github.com/xaionaro-go/denoise/pkg/audio/backends/pulseaudio"
	"github.com/xaionaro-go/denoise/pkg/engine"
	_ "github.com/xaionaro-go/denoise/pkg/noisesuppression/implementations/rnnoise"
	_ "github.com/xaionaro-go/denoise/pkg/noisesuppression/implementations/spectral"
	"github.com/xaionaro-go/denoise/pkg/pipeline"
	"github.com/xaionaro-go/observability"
)

func main() {
	loggerLevel := logger.LevelDebug
	pflag.Var(&loggerLevel, "log-level", "Log level")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	sensitivity := pflag.Float64("sensitivity", pipeline.SensitivityDefault, "voice detection sensitivity")
	simpleGain := pflag.Bool("simple-gain", false, "use the two-level gain instead of the adaptive one")
	noNoiseGate := pflag.Bool("no-noise-gate", false, "disable the noise gate")
	noDynamicRange := pflag.Bool("no-dynamic-range", false, "disable the dynamic range compressor")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	ctx, cancelFn := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancelFn()

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	params := pipeline.DefaultProcessingParameters()
	params.Sensitivity = *sensitivity
	params.AdaptiveMode = !*simpleGain
	params.NoiseGateEnabled = !*noNoiseGate
	params.DynamicRangeEnabled = !*noDynamicRange
	logger.Debugf(ctx, "processing parameters: %s", spew.Sdump(params))

	logger.Infof(ctx, "starting...")
	source, err := audio.NewCaptureAuto(ctx)
	assertNoError(err)

	sink := audio.NewPlaybackAuto(ctx)

	e, err := engine.New(ctx, engine.Config{
		Source:     source,
		Sink:       sink,
		Parameters: &params,
	})
	assertNoError(err)
	defer func() {
		assertNoError(e.Close())
	}()

	logger.Infof(ctx, "started (%T -> %T)", source, sink)

	observability.Go(ctx, func(ctx context.Context) {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				logger.Debugf(ctx, "%s", e.Metrics().Summary())
				logger.Debugf(ctx,
					"drops: input:%d, output:%d, underruns:%d",
					e.InputDrops(), e.OutputDrops(), e.Underruns(),
				)
			}
		}
	})

	<-ctx.Done()
	if err := e.Err(); err != nil {
		logger.Errorf(ctx, "engine failed: %v", err)
	}
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
