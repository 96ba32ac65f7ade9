package engine

import (
	"math"
	"testing"
)

func TestRMSConstantAmplitude(t *testing.T) {
	chunk := make([]float32, 1600)
	for i := range chunk {
		chunk[i] = 0.5
	}
	if got := RMS(chunk); math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("rms got %g want 0.5", got)
	}
}

func TestRMSEmpty(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("rms of empty got %g", got)
	}
}

func TestLevelMeterThresholdGate(t *testing.T) {
	m := NewLevelMeter(0.05)
	loud := make([]float32, 100)
	for i := range loud {
		loud[i] = 0.2
	}
	m.Update(loud)
	if !m.Speech() {
		t.Fatalf("loud chunk should be speech")
	}
	quiet := make([]float32, 100)
	for i := range quiet {
		quiet[i] = 0.001
	}
	m.Update(quiet)
	if m.Speech() {
		t.Fatalf("quiet chunk should not be speech")
	}
}

func TestLevelMeterDisabledGateAlwaysSpeech(t *testing.T) {
	m := NewLevelMeter(0)
	if !m.Speech() {
		t.Fatalf("speech should be true before any chunk")
	}
	silent := make([]float32, 100) // all zeros
	m.Update(silent)
	if !m.Speech() {
		t.Fatalf("threshold 0 must report speech regardless of RMS")
	}
}

func TestLevelMeterLevelClamped(t *testing.T) {
	m := NewLevelMeter(0)
	hot := make([]float32, 10)
	for i := range hot {
		hot[i] = 4.0
	}
	m.Update(hot)
	if got := m.Level(); got != 1.0 {
		t.Fatalf("level got %g want clamp to 1.0", got)
	}
}
