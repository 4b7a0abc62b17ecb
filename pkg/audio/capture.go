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
	lastSuccessfulCaptureFactory       registry.CaptureSourceFactory
	lastSuccessfulCaptureFactoryLocker sync.Mutex
)

func getLastSuccessfulCaptureFactory() registry.CaptureSourceFactory {
	lastSuccessfulCaptureFactoryLocker.Lock()
	defer lastSuccessfulCaptureFactoryLocker.Unlock()
	return lastSuccessfulCaptureFactory
}

// NewCaptureAuto returns a capture source from the highest-priority
// registered backend that initializes and pings successfully.
func NewCaptureAuto(
	ctx context.Context,
) (CaptureSource, error) {
	factory := getLastSuccessfulCaptureFactory()
	if factory != nil {
		capture, err := factory.NewCaptureSource()
		if err == nil {
			if err := capture.Ping(ctx); err == nil {
				return capture, nil
			}
			capture.Close()
		}
	}

	var mErr *multierror.Error
	for _, factory := range registry.CaptureFactories() {
		capture, err := factory.NewCaptureSource()
		logger.Debugf(ctx, "initializing capture source %T result is %v", capture, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize %T: %w", capture, err))
			continue
		}

		err = capture.Ping(ctx)
		logger.Debugf(ctx, "pinging capture source %T result is %v", capture, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to ping %T: %w", capture, err))
			capture.Close()
			continue
		}

		lastSuccessfulCaptureFactoryLocker.Lock()
		defer lastSuccessfulCaptureFactoryLocker.Unlock()
		lastSuccessfulCaptureFactory = factory
		return capture, nil
	}

	return nil, fmt.Errorf("was unable to initialize any capture source: %w", mErr.ErrorOrNil())
}
