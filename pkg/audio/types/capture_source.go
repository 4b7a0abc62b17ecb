package types

import (
	"context"
	"io"
)

type SampleRate uint32

type Channel uint16

// CaptureSource produces raw interleaved float32 PCM at the device's
// native sample rate and channel count.
type CaptureSource interface {
	io.Closer

	// Ping checks if the backend is operational at all.
	Ping(context.Context) error

	SampleRate() SampleRate
	Channels() Channel

	// Start begins delivering captured audio. The deliver callback is
	// invoked from the backend's capture path and must never block;
	// the chunk is only valid for the duration of the call.
	//
	// Capturing stops when ctx is cancelled.
	Start(ctx context.Context, deliver CaptureFunc) error
}

// CaptureFunc receives one chunk of interleaved float32 samples.
type CaptureFunc func(chunk []float32)
