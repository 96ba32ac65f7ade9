package engine

import "testing"

func TestDispatcherDedupsConsecutive(t *testing.T) {
	d := NewDispatcher(4)
	var got []string
	d.OnResult(func(text string) { got = append(got, text) })

	d.Result("hello")
	d.Result("hello")
	d.Result("hello world")
	d.Result("")

	if len(got) != 2 || got[0] != "hello" || got[1] != "hello world" {
		t.Fatalf("results %v", got)
	}
}

func TestDispatcherResetLastAllowsRepeat(t *testing.T) {
	d := NewDispatcher(4)
	n := 0
	d.OnResult(func(string) { n++ })
	d.Result("same")
	d.ResetLast()
	d.Result("same")
	if n != 2 {
		t.Fatalf("expected repeat after reset, got %d calls", n)
	}
}

func TestDispatcherSegmentHistory(t *testing.T) {
	d := NewDispatcher(4)
	var done []string
	d.OnSegmentComplete(func(text string) { done = append(done, text) })

	d.Segment("one", nil)
	d.Segment("", nil) // ignored
	d.Segment("two", nil)

	if got := d.AccumulatedText(); got != "one two" {
		t.Fatalf("accumulated %q", got)
	}
	segs := d.Segments()
	if len(segs) != 2 || segs[0] != "one" || segs[1] != "two" {
		t.Fatalf("segments %v", segs)
	}
	if len(done) != 2 {
		t.Fatalf("segment callback fired %d times", len(done))
	}
	d.ClearSegments()
	if d.AccumulatedText() != "" {
		t.Fatalf("expected empty after clear")
	}
}

func TestDispatcherEventsDropWhenFull(t *testing.T) {
	d := NewDispatcher(1)
	d.Result("a")
	d.Result("b") // queue full, dropped rather than blocking
	select {
	case ev := <-d.Events():
		if ev.Text != "a" || ev.Kind != EventResult {
			t.Fatalf("event %+v", ev)
		}
	default:
		t.Fatalf("expected one queued event")
	}
	select {
	case ev := <-d.Events():
		t.Fatalf("unexpected second event %+v", ev)
	default:
	}
}
