package control

import (
	"encoding/binary"
	"testing"
)

func TestTrimBoundsPadsAroundSpeech(t *testing.T) {
	voiced := []bool{false, false, false, true, true, false, false, false}
	start, end := trimBounds(voiced, 1)
	if start != 2 || end != 6 {
		t.Fatalf("bounds (%d, %d) want (2, 6)", start, end)
	}
}

func TestTrimBoundsClampsToInput(t *testing.T) {
	voiced := []bool{true, false, false, true}
	start, end := trimBounds(voiced, 3)
	if start != 0 || end != 4 {
		t.Fatalf("bounds (%d, %d) want (0, 4)", start, end)
	}
}

func TestTrimBoundsAllSilence(t *testing.T) {
	start, end := trimBounds([]bool{false, false, false}, 2)
	if start != 0 || end != 0 {
		t.Fatalf("bounds (%d, %d) want (0, 0)", start, end)
	}
}

func TestPCMBytesClampsAndEncodes(t *testing.T) {
	out := pcmBytes([]float32{0, 1, -1, 2, -2})
	if len(out) != 10 {
		t.Fatalf("length %d want 10", len(out))
	}
	if v := int16(binary.LittleEndian.Uint16(out[0:])); v != 0 {
		t.Fatalf("sample 0 = %d", v)
	}
	if v := int16(binary.LittleEndian.Uint16(out[2:])); v != 32767 {
		t.Fatalf("sample 1 = %d", v)
	}
	if v := int16(binary.LittleEndian.Uint16(out[6:])); v != 32767 {
		t.Fatalf("clamped sample = %d", v)
	}
	if v := int16(binary.LittleEndian.Uint16(out[8:])); v != -32767 {
		t.Fatalf("negative clamped sample = %d", v)
	}
}
