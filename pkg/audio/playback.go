package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/denoise/pkg/audio/registry"
)

var (
	lastSuccessfulPlaybackFactory       registry.PlaybackSinkFactory
	lastSuccessfulPlaybackFactoryLocker sync.Mutex
)

func getLastSuccessfulPlaybackFactory() registry.PlaybackSinkFactory {
	lastSuccessfulPlaybackFactoryLocker.Lock()
	defer lastSuccessfulPlaybackFactoryLocker.Unlock()
	return lastSuccessfulPlaybackFactory
}

// NewPlaybackAuto returns a playback sink from the highest-priority
// registered backend that initializes and pings successfully. If no
// backend is operational it returns a dummy sink that discards audio,
// so that processing may still run for its side effects (metrics,
// file output).
func NewPlaybackAuto(
	ctx context.Context,
) PlaybackSink {
	factory := getLastSuccessfulPlaybackFactory()
	if factory != nil {
		playback, err := factory.NewPlaybackSink()
		if err == nil {
			if err := playback.Ping(ctx); err == nil {
				return playback
			}
			playback.Close()
		}
	}

	var mErr *multierror.Error
	for _, factory := range registry.PlaybackFactories() {
		playback, err := factory.NewPlaybackSink()
		logger.Debugf(ctx, "initializing playback sink %T result is %v", playback, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize %T: %w", playback, err))
			continue
		}

		err = playback.Ping(ctx)
		logger.Debugf(ctx, "pinging playback sink %T result is %v", playback, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to ping %T: %w", playback, err))
			playback.Close()
			continue
		}

		lastSuccessfulPlaybackFactoryLocker.Lock()
		defer lastSuccessfulPlaybackFactoryLocker.Unlock()
		lastSuccessfulPlaybackFactory = factory
		return playback
	}

	logger.Infof(ctx, "was unable to initialize any playback sink: %v", mErr.ErrorOrNil())
	return NewPlaybackSinkDummy(48000, 1)
}
