// Package capture abstracts the audio-driver-facing side of the engine.
// A Stream delivers fixed-size chunks of mono float32 samples to a ChunkFunc
// on the driver's schedule; the callback must stay O(chunk) and non-blocking.
package capture

// ChunkFunc receives one chunk of newly captured samples. The slice is only
// valid for the duration of the call; implementations reuse it.
type ChunkFunc func(samples []float32)

// Params describes the stream to open.
type Params struct {
	SampleRate   int
	Channels     int
	FrameSamples int // samples per chunk (~100ms worth)
}

// Stream is an open capture stream.
type Stream interface {
	// Close stops delivery and releases the device. Safe to call once.
	Close() error
}

// Opener opens capture streams against a named device ("" = default input).
type Opener interface {
	Open(deviceName string, p Params, fn ChunkFunc) (Stream, error)
}
