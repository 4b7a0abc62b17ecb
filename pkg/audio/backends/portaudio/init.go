package portaudio

import (
	"github.com/xaionaro-go/denoise/pkg/audio/registry"
	"github.com/xaionaro-go/denoise/pkg/audio/types"
)

const (
	Priority = 60
)

func init() {
	registry.RegisterCaptureFactory(Priority, CaptureSourceFactory{})
	registry.RegisterPlaybackFactory(Priority, PlaybackSinkFactory{})
}

type CaptureSourceFactory struct{}

func (CaptureSourceFactory) NewCaptureSource() (types.CaptureSource, error) {
	source, err := NewCaptureSource()
	if err != nil {
		return nil, err
	}
	return source, nil
}

type PlaybackSinkFactory struct{}

func (PlaybackSinkFactory) NewPlaybackSink() (types.PlaybackSink, error) {
	sink, err := NewPlaybackSink()
	if err != nil {
		return nil, err
	}
	return sink, nil
}
