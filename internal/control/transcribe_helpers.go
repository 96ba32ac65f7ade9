package control

import "encoding/binary"

// pcmBytes converts float32 samples to 16-bit little-endian PCM, the frame
// format the webrtc VAD consumes.
func pcmBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
	return out
}

// trimBounds maps per-frame voice activity to a kept frame range [start, end),
// padded on both sides so word onsets survive the trim. A fully silent input
// yields (0, 0).
func trimBounds(voiced []bool, pad int) (int, int) {
	first, last := -1, -1
	for i, v := range voiced {
		if v {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return 0, 0
	}
	start := first - pad
	if start < 0 {
		start = 0
	}
	end := last + 1 + pad
	if end > len(voiced) {
		end = len(voiced)
	}
	return start, end
}
