package wavio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	in := make([]float32, 1600)
	for i := range in {
		in[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	if err := Write(path, in, 16000); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := Read(path, 16000)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length got %d want %d", len(out), len(in))
	}
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 0.001 {
			t.Fatalf("sample %d: got %g want %g", i, out[i], in[i])
		}
	}
}

func TestReadResamplesToWantRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slow.wav")

	in := make([]float32, 8000) // 1 s at 8 kHz
	if err := Write(path, in, 8000); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := Read(path, 16000)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 16000 {
		t.Fatalf("resampled length got %d want 16000", len(out))
	}
}

func TestResampleLinearLength(t *testing.T) {
	in := []float32{0, 1, 2, 3}
	out := ResampleLinear(in, 16000, 8000)
	if len(out) != 2 {
		t.Fatalf("downsample length got %d", len(out))
	}
	out = ResampleLinear(in, 8000, 16000)
	if len(out) != 8 {
		t.Fatalf("upsample length got %d", len(out))
	}
}

func TestResampleLinearEnds(t *testing.T) {
	in := []float32{0, 10}
	out := ResampleLinear(in, 1000, 2000)
	if out[0] != 0 || out[len(out)-1] != 10 {
		t.Fatalf("endpoints not preserved: %v", out)
	}
}
