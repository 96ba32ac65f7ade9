package engine

import "testing"

func TestSampleBufferEvictsOldest(t *testing.T) {
	b := NewSampleBuffer(5)
	b.Push([]float32{1, 2, 3})
	b.Push([]float32{4, 5, 6})
	if b.Len() != 5 {
		t.Fatalf("len got %d want 5", b.Len())
	}
	got := b.Snapshot()
	want := []float32{2, 3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot %v want %v", got, want)
		}
	}
}

func TestSampleBufferCapacityInvariant(t *testing.T) {
	b := NewSampleBuffer(100)
	for i := 0; i < 50; i++ {
		b.Push(make([]float32, 7))
		if b.Len() > 100 {
			t.Fatalf("len %d exceeds capacity after push %d", b.Len(), i)
		}
	}
	if b.Len() != 100 {
		t.Fatalf("expected full buffer, got %d", b.Len())
	}
}

func TestSampleBufferOversizedPushKeepsTail(t *testing.T) {
	b := NewSampleBuffer(3)
	in := []float32{1, 2, 3, 4, 5}
	b.Push(in)
	got := b.Snapshot()
	want := []float32{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot %v want %v", got, want)
		}
	}
}

func TestSampleBufferSnapshotIsCopy(t *testing.T) {
	b := NewSampleBuffer(4)
	b.Push([]float32{1, 2})
	snap := b.Snapshot()
	b.Push([]float32{9, 9})
	if snap[0] != 1 || snap[1] != 2 {
		t.Fatalf("snapshot mutated: %v", snap)
	}
}

func TestSampleBufferClear(t *testing.T) {
	b := NewSampleBuffer(4)
	b.Push([]float32{1, 2, 3})
	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("len after clear got %d", b.Len())
	}
}

func TestAccumulationLogConcatOrder(t *testing.T) {
	var l AccumulationLog
	l.Append([]float32{1, 2})
	l.Append([]float32{3})
	l.Append([]float32{4, 5})
	if l.Len() != 3 || l.Samples() != 5 {
		t.Fatalf("len=%d samples=%d", l.Len(), l.Samples())
	}
	got := l.Concat()
	want := []float32{1, 2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("concat %v want %v", got, want)
		}
	}
}

func TestAccumulationLogAppendCopies(t *testing.T) {
	var l AccumulationLog
	chunk := []float32{1, 2}
	l.Append(chunk)
	chunk[0] = 9 // callers reuse chunk slices
	if got := l.Concat(); got[0] != 1 {
		t.Fatalf("append did not copy: %v", got)
	}
}
