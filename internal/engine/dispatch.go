package engine

import (
	"strings"
	"sync"
	"time"
)

// EventKind discriminates engine events.
type EventKind int

const (
	// EventResult is a streaming recognition result (continuous mode).
	EventResult EventKind = iota
	// EventSegment is a completed push-to-talk span.
	EventSegment
)

// Event is published by the engine for outer consumers to drain on their own
// schedule. Segment events carry the finalized sample span so consumers can
// persist the audio.
type Event struct {
	Kind    EventKind
	Text    string
	Samples []float32
	Time    time.Time
}

// Dispatcher holds the last-seen text, suppresses duplicate results, and
// fans recognized text out to the registered callbacks and the event queue.
// Result and Segment are only ever called from the serialized recognition
// loop and controller, so delivery order matches computation order.
type Dispatcher struct {
	mu        sync.Mutex
	lastText  string
	segments  []string
	onResult  func(string)
	onSegment func(string)
	events    chan Event
}

// NewDispatcher returns a dispatcher with an event queue of the given size.
func NewDispatcher(eventBuffer int) *Dispatcher {
	if eventBuffer < 1 {
		eventBuffer = 16
	}
	return &Dispatcher{events: make(chan Event, eventBuffer)}
}

// OnResult registers the streaming-result callback slot.
func (d *Dispatcher) OnResult(fn func(text string)) {
	d.mu.Lock()
	d.onResult = fn
	d.mu.Unlock()
}

// OnSegmentComplete registers the completed-segment callback slot.
func (d *Dispatcher) OnSegmentComplete(fn func(text string)) {
	d.mu.Lock()
	d.onSegment = fn
	d.mu.Unlock()
}

// Events returns the queue consumers drain. Events are dropped, not queued
// unboundedly, when the consumer falls behind.
func (d *Dispatcher) Events() <-chan Event { return d.events }

// Result forwards text if it is non-empty and differs from the previous
// result. Reports whether a notification was delivered.
func (d *Dispatcher) Result(text string) bool {
	if text == "" {
		return false
	}
	d.mu.Lock()
	if text == d.lastText {
		d.mu.Unlock()
		return false
	}
	d.lastText = text
	fn := d.onResult
	d.mu.Unlock()

	if fn != nil {
		fn(text)
	}
	d.publish(Event{Kind: EventResult, Text: text, Time: time.Now()})
	return true
}

// Segment appends text to the segment history and notifies the segment slot.
// Empty text is ignored.
func (d *Dispatcher) Segment(text string, samples []float32) {
	if text == "" {
		return
	}
	d.mu.Lock()
	d.segments = append(d.segments, text)
	fn := d.onSegment
	d.mu.Unlock()

	if fn != nil {
		fn(text)
	}
	d.publish(Event{Kind: EventSegment, Text: text, Samples: samples, Time: time.Now()})
}

func (d *Dispatcher) publish(ev Event) {
	select {
	case d.events <- ev:
	default:
	}
}

// AccumulatedText returns all segments space-joined in append order.
func (d *Dispatcher) AccumulatedText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.Join(d.segments, " ")
}

// Segments returns a copy of the segment history.
func (d *Dispatcher) Segments() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.segments))
	copy(out, d.segments)
	return out
}

// ClearSegments drops the segment history.
func (d *Dispatcher) ClearSegments() {
	d.mu.Lock()
	d.segments = nil
	d.mu.Unlock()
}

// ResetLast forgets the last-seen text so the next identical result is
// delivered again. Used on stop and at recording-span boundaries.
func (d *Dispatcher) ResetLast() {
	d.mu.Lock()
	d.lastText = ""
	d.mu.Unlock()
}

// LastText returns the last delivered result.
func (d *Dispatcher) LastText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastText
}
