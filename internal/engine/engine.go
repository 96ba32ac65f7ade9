// Package engine implements the realtime recognition core: a bounded sample
// buffer fed by the capture callback, a background recognition loop with RMS
// voice-activity gating, and the continuous / push-to-talk state machine.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"earshot/internal/asr"
	"earshot/internal/capture"
	"earshot/internal/config"

	"github.com/sirupsen/logrus"
)

// Mode selects how recording spans are bounded.
type Mode int

const (
	// Continuous recognizes a sliding window over live audio.
	Continuous Mode = iota
	// PushToTalk stays armed until StartRecording, then finalizes the whole
	// span on StopRecording.
	PushToTalk
)

// Options configures an Engine. Zero values fall back to the standard
// cadence (16 kHz, 3 s window, 1.5 s minimum, 100 ms poll).
type Options struct {
	SampleRate      int
	BufferSeconds   float64
	MinAudioSeconds float64
	VADThreshold    float64 // RMS gate; 0 disables
	Accumulate      bool
	Mode            Mode
	ChunkSamples    int
	PollInterval    time.Duration
	StopTimeout     time.Duration
	EventBuffer     int
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = 16000
	}
	if o.BufferSeconds <= 0 {
		o.BufferSeconds = 3.0
	}
	if o.MinAudioSeconds <= 0 {
		o.MinAudioSeconds = 1.5
	}
	if o.ChunkSamples <= 0 {
		o.ChunkSamples = o.SampleRate / 10 // ~100ms
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 100 * time.Millisecond
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = time.Second
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 16
	}
	return o
}

// OptionsFromConfig maps the [audio] and [engine] config sections onto
// engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	mode := Continuous
	if cfg.Engine.Mode == config.ModePushToTalk {
		mode = PushToTalk
	}
	return Options{
		SampleRate:      cfg.Audio.SampleRate,
		BufferSeconds:   cfg.Engine.BufferSeconds,
		MinAudioSeconds: cfg.Engine.MinAudioSeconds,
		VADThreshold:    cfg.Engine.VADThreshold,
		Accumulate:      cfg.Engine.Accumulate,
		Mode:            mode,
		ChunkSamples:    cfg.Audio.SampleRate * cfg.Audio.ChunkMS / 1000,
		PollInterval:    time.Duration(cfg.Engine.PollMS) * time.Millisecond,
		StopTimeout:     time.Duration(cfg.Engine.StopTimeoutMS) * time.Millisecond,
	}.withDefaults()
}

// Engine owns the session state machine and the recognition loop. All
// transitions are serialized through a single controller mutex; the capture
// callback stays lock-free except for the shared buffer mutex.
type Engine struct {
	opts       Options
	rec        asr.Recognizer
	opener     capture.Opener
	logger     *logrus.Logger
	minSamples int

	// mu guards buffer and accum. Never held across a recognizer call;
	// snapshots are copied out first.
	mu     sync.Mutex
	buffer *SampleBuffer
	accum  AccumulationLog

	meter    *LevelMeter
	dispatch *Dispatcher

	// ctl serializes Start/Stop/Pause/Resume/StartRecording/StopRecording.
	ctl       sync.Mutex
	running   atomic.Bool
	paused    atomic.Bool
	recording atomic.Bool

	stream   capture.Stream
	loopDone chan struct{}
	cancel   context.CancelFunc
}

// New builds an engine around the given recognizer and capture opener.
func New(opts Options, rec asr.Recognizer, opener capture.Opener, logger *logrus.Logger) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts:       opts,
		rec:        rec,
		opener:     opener,
		logger:     logger,
		minSamples: int(float64(opts.SampleRate) * opts.MinAudioSeconds),
		buffer:     NewSampleBuffer(int(float64(opts.SampleRate) * opts.BufferSeconds)),
		meter:      NewLevelMeter(opts.VADThreshold),
		dispatch:   NewDispatcher(opts.EventBuffer),
	}
}

// OnResult registers the streaming-result callback.
func (e *Engine) OnResult(fn func(text string)) { e.dispatch.OnResult(fn) }

// OnSegmentComplete registers the completed-segment callback.
func (e *Engine) OnSegmentComplete(fn func(text string)) { e.dispatch.OnSegmentComplete(fn) }

// Events exposes the engine event queue.
func (e *Engine) Events() <-chan Event { return e.dispatch.Events() }

// Start opens the capture device and launches the recognition loop.
// A device-open failure is returned to the caller and leaves the engine idle.
func (e *Engine) Start(device string) error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	if e.running.Load() {
		return fmt.Errorf("engine already running")
	}

	e.mu.Lock()
	e.buffer.Clear()
	e.accum.Clear()
	e.mu.Unlock()
	e.meter.Reset()
	e.dispatch.ResetLast()

	stream, err := e.opener.Open(device, capture.Params{
		SampleRate:   e.opts.SampleRate,
		Channels:     1,
		FrameSamples: e.opts.ChunkSamples,
	}, e.onChunk)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	e.stream = stream

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.loopDone = make(chan struct{})

	e.paused.Store(false)
	// Push-to-talk starts armed: no audio is buffered until StartRecording.
	e.recording.Store(e.opts.Mode == Continuous)
	e.running.Store(true)

	go e.recognitionLoop(ctx, e.loopDone)
	return nil
}

// onChunk is the capture callback: O(chunk), non-blocking, never invokes the
// recognizer.
func (e *Engine) onChunk(samples []float32) {
	e.meter.Update(samples)
	if !e.recording.Load() {
		return
	}
	e.mu.Lock()
	e.buffer.Push(samples)
	if e.opts.Accumulate {
		e.accum.Append(samples)
	}
	e.mu.Unlock()
}

// recognitionLoop samples the buffer at the poll cadence, applies gating, and
// runs at most one recognition at a time. Recognizer failures are logged and
// retried on the next iteration with fresh audio.
func (e *Engine) recognitionLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if e.paused.Load() || !e.recording.Load() {
			continue
		}

		e.mu.Lock()
		var samples []float32
		if e.buffer.Len() >= e.minSamples {
			samples = e.buffer.Snapshot()
		}
		e.mu.Unlock()
		if samples == nil {
			continue
		}
		// Gating suppresses recognition on silence without discarding
		// buffered audio.
		if e.opts.VADThreshold > 0 && !e.meter.Speech() {
			continue
		}

		text, err := e.rec.Recognize(ctx, samples, e.opts.SampleRate)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.logger.Warnf("recognize: %v", err)
			continue
		}
		if e.dispatch.Result(text) {
			e.logger.Debugf("heard: %q", text)
		}
	}
}

// Stop terminates the loop, closes the device, and clears all session state.
// Safe to call from any state; a loop that outlives the join timeout is
// abandoned rather than treated as fatal.
func (e *Engine) Stop() {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	if !e.running.Load() {
		return
	}
	e.running.Store(false)
	e.recording.Store(false)
	e.paused.Store(false)

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.loopDone != nil {
		select {
		case <-e.loopDone:
		case <-time.After(e.opts.StopTimeout):
			e.logger.Warnf("recognition loop did not stop within %s; abandoning", e.opts.StopTimeout)
		}
		e.loopDone = nil
	}
	if e.stream != nil {
		if err := e.stream.Close(); err != nil {
			e.logger.Warnf("close capture: %v", err)
		}
		e.stream = nil
	}

	e.mu.Lock()
	e.buffer.Clear()
	e.accum.Clear()
	e.mu.Unlock()
	e.meter.Reset()
	e.dispatch.ResetLast()
}

// Pause suppresses recognition; audio keeps being captured.
func (e *Engine) Pause() { e.paused.Store(true) }

// Resume lifts a pause.
func (e *Engine) Resume() { e.paused.Store(false) }

// StartRecording begins a push-to-talk span: both buffers are cleared and
// duplicate suppression is reset.
func (e *Engine) StartRecording() {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.mu.Lock()
	e.buffer.Clear()
	e.accum.Clear()
	e.mu.Unlock()
	e.dispatch.ResetLast()
	e.recording.Store(true)
}

// StopRecording ends the span and synchronously finalizes it: in accumulate
// mode the whole span is recognized at once, otherwise the current sliding
// window is used. The caller blocks for one recognizer invocation.
// Recognition failures are absorbed and yield empty text.
func (e *Engine) StopRecording(ctx context.Context) string {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.recording.Store(false)

	e.mu.Lock()
	var samples []float32
	if e.opts.Accumulate && e.accum.Len() > 0 {
		samples = e.accum.Concat()
	} else if e.buffer.Len() > 0 {
		samples = e.buffer.Snapshot()
	}
	e.accum.Clear()
	e.mu.Unlock()

	if len(samples) == 0 {
		return ""
	}
	text, err := e.rec.Recognize(ctx, samples, e.opts.SampleRate)
	if err != nil {
		e.logger.Warnf("finalize recognize: %v", err)
		return ""
	}
	e.dispatch.Segment(text, samples)
	return text
}

// IsRecording reports whether a span is being captured.
func (e *Engine) IsRecording() bool { return e.recording.Load() }

// IsActive reports whether the engine is running and not paused.
func (e *Engine) IsActive() bool { return e.running.Load() && !e.paused.Load() }

// AudioLevel returns the current RMS level in [0, 1].
func (e *Engine) AudioLevel() float64 { return e.meter.Level() }

// BufferedSamples returns the current sliding-window fill.
func (e *Engine) BufferedSamples() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer.Len()
}

// AccumulatedText returns the segment history space-joined in append order.
func (e *Engine) AccumulatedText() string { return e.dispatch.AccumulatedText() }

// AccumulatedSegments returns the ordered segment history.
func (e *Engine) AccumulatedSegments() []string { return e.dispatch.Segments() }

// ClearAccumulatedText drops the segment history.
func (e *Engine) ClearAccumulatedText() { e.dispatch.ClearSegments() }

// ClearBuffer empties both audio buffers and resets duplicate suppression.
func (e *Engine) ClearBuffer() {
	e.mu.Lock()
	e.buffer.Clear()
	e.accum.Clear()
	e.mu.Unlock()
	e.dispatch.ResetLast()
}

// State is a point-in-time snapshot for status reporting.
type State struct {
	Running   bool    `json:"running"`
	Paused    bool    `json:"paused"`
	Recording bool    `json:"recording"`
	Level     float64 `json:"level"`
	Buffered  int     `json:"buffered_samples"`
	Segments  int     `json:"segments"`
}

// Snapshot returns the current session state.
func (e *Engine) Snapshot() State {
	return State{
		Running:   e.running.Load(),
		Paused:    e.paused.Load(),
		Recording: e.recording.Load(),
		Level:     e.meter.Level(),
		Buffered:  e.BufferedSamples(),
		Segments:  len(e.dispatch.Segments()),
	}
}
