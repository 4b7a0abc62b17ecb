package oto

import (
	"github.com/xaionaro-go/denoise/pkg/audio/registry"
	"github.com/xaionaro-go/denoise/pkg/audio/types"
)

const (
	Priority = 50
)

func init() {
	registry.RegisterPlaybackFactory(Priority, PlaybackSinkFactory{})
}

type PlaybackSinkFactory struct{}

func (PlaybackSinkFactory) NewPlaybackSink() (types.PlaybackSink, error) {
	sink, err := NewPlaybackSink()
	if err != nil {
		return nil, err
	}
	return sink, nil
}
