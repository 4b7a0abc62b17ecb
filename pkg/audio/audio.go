package audio

import (
	"github.com/xaionaro-go/denoise/pkg/audio/types"
)

type SampleRate = types.SampleRate
type Channel = types.Channel
type CaptureSource = types.CaptureSource
type PlaybackSink = types.PlaybackSink
type CaptureFunc = types.CaptureFunc
type FillFunc = types.FillFunc
