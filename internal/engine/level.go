package engine

import (
	"math"
	"sync/atomic"
)

// RMS returns the root-mean-square amplitude of chunk.
func RMS(chunk []float32) float64 {
	if len(chunk) == 0 {
		return 0
	}
	var sum float64
	for _, s := range chunk {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(chunk)))
}

// LevelMeter holds the instantaneous loudness and voice-activity signal,
// updated by the capture callback and read lock-free by the recognition loop
// and level queries.
type LevelMeter struct {
	threshold float64 // 0 disables gating
	level     atomic.Uint64
	speech    atomic.Bool
}

// NewLevelMeter returns a meter gating at the given RMS threshold.
func NewLevelMeter(threshold float64) *LevelMeter {
	m := &LevelMeter{threshold: threshold}
	m.speech.Store(threshold == 0)
	return m
}

// Update records the RMS of one chunk and derives isSpeech.
func (m *LevelMeter) Update(chunk []float32) {
	rms := RMS(chunk)
	m.level.Store(math.Float64bits(rms))
	if m.threshold > 0 {
		m.speech.Store(rms > m.threshold)
	} else {
		m.speech.Store(true)
	}
}

// Level returns the last RMS clamped to [0, 1].
func (m *LevelMeter) Level() float64 {
	return math.Min(math.Float64frombits(m.level.Load()), 1.0)
}

// Speech reports whether the last chunk cleared the gate. Always true when
// gating is disabled.
func (m *LevelMeter) Speech() bool { return m.speech.Load() }

// Reset clears the meter to silence.
func (m *LevelMeter) Reset() {
	m.level.Store(0)
	m.speech.Store(m.threshold == 0)
}
