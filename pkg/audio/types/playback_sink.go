package types

import (
	"context"
	"io"
)

// PlaybackSink consumes interleaved float32 PCM and plays it back on
// the device.
type PlaybackSink interface {
	io.Closer

	// Ping checks if the backend is operational at all.
	Ping(context.Context) error

	SampleRate() SampleRate
	Channels() Channel

	// Start begins pulling audio for playback. The fill callback is
	// invoked from the backend's playback path and must never block;
	// it is expected to fully populate the buffer (with silence if
	// nothing is available).
	//
	// Playback stops when ctx is cancelled.
	Start(ctx context.Context, fill FillFunc) error
}

// FillFunc populates one buffer of interleaved float32 samples.
type FillFunc func(out []float32)
