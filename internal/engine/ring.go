package engine

// SampleBuffer is a bounded sample store with FIFO eviction: pushing past
// capacity discards the oldest samples, giving a lossy sliding window over
// the most recent buffer_seconds of audio.
//
// SampleBuffer is not internally locked. The engine guards it together with
// the AccumulationLog under a single mutex; the capture callback and the
// recognition loop are the only parties that touch either.
type SampleBuffer struct {
	data []float32
	cap  int
}

// NewSampleBuffer returns a buffer holding at most capacity samples.
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &SampleBuffer{data: make([]float32, 0, capacity), cap: capacity}
}

// Push appends samples, evicting the oldest overflow.
func (b *SampleBuffer) Push(samples []float32) {
	if len(samples) >= b.cap {
		b.data = b.data[:b.cap]
		copy(b.data, samples[len(samples)-b.cap:])
		return
	}
	if over := len(b.data) + len(samples) - b.cap; over > 0 {
		n := copy(b.data, b.data[over:])
		b.data = b.data[:n]
	}
	b.data = append(b.data, samples...)
}

// Snapshot returns a copy of the current contents. The caller releases the
// shared lock before processing the copy, so the recognizer never runs while
// the capture callback is blocked on the mutex.
func (b *SampleBuffer) Snapshot() []float32 {
	out := make([]float32, len(b.data))
	copy(out, b.data)
	return out
}

// Len returns the number of buffered samples.
func (b *SampleBuffer) Len() int { return len(b.data) }

// Cap returns the buffer capacity.
func (b *SampleBuffer) Cap() int { return b.cap }

// Clear resets the buffer to empty.
func (b *SampleBuffer) Clear() { b.data = b.data[:0] }

// AccumulationLog collects raw chunks between a recording start/stop
// boundary. Unbounded within one span; cleared when a new span begins.
// Shares the engine mutex with SampleBuffer.
type AccumulationLog struct {
	chunks [][]float32
	total  int
}

// Append stores a copy of chunk.
func (l *AccumulationLog) Append(chunk []float32) {
	cpy := make([]float32, len(chunk))
	copy(cpy, chunk)
	l.chunks = append(l.chunks, cpy)
	l.total += len(chunk)
}

// Concat joins all chunks into one sample sequence in arrival order.
func (l *AccumulationLog) Concat() []float32 {
	out := make([]float32, 0, l.total)
	for _, c := range l.chunks {
		out = append(out, c...)
	}
	return out
}

// Len returns the number of stored chunks.
func (l *AccumulationLog) Len() int { return len(l.chunks) }

// Samples returns the total number of accumulated samples.
func (l *AccumulationLog) Samples() int { return l.total }

// Clear drops all chunks.
func (l *AccumulationLog) Clear() {
	l.chunks = nil
	l.total = 0
}
