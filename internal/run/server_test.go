package run

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"earshot/internal/capture"
	"earshot/internal/config"
	"earshot/internal/control"
	"earshot/internal/engine"
	"earshot/internal/logging"
)

type pipeOpener struct {
	fn capture.ChunkFunc
}

type pipeStream struct{}

func (s pipeStream) Close() error { return nil }

func (o *pipeOpener) Open(_ string, _ capture.Params, fn capture.ChunkFunc) (capture.Stream, error) {
	o.fn = fn
	return pipeStream{}, nil
}

type fixedRecognizer struct{ text string }

func (r fixedRecognizer) Recognize(context.Context, []float32, int) (string, error) {
	return r.text, nil
}

func (fixedRecognizer) Close() error { return nil }

func testServer(t *testing.T) (*Server, *pipeOpener) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Engine.Mode = config.ModePushToTalk
	cfg.Engine.Accumulate = true
	cfg.Engine.PollMS = 3_600_000 // keep the loop quiet
	cfg.Transcripts.Tail = 3
	cfg.Paths.TranscriptPath = filepath.Join(dir, "transcripts.log")

	op := &pipeOpener{}
	eng := engine.New(engine.OptionsFromConfig(cfg), fixedRecognizer{text: "spoken words"}, op, logging.NewTestLogger())
	if err := eng.Start(""); err != nil {
		t.Fatalf("engine start: %v", err)
	}
	t.Cleanup(eng.Stop)
	return newServer(cfg, logging.NewTestLogger(), eng), op
}

func roundTrip(t *testing.T, s *Server, op string, out any) {
	t.Helper()
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.handleRequest(context.Background(), control.Request{Op: op}, server)
		_ = server.Close()
	}()
	if err := json.NewDecoder(client).Decode(out); err != nil {
		t.Fatalf("decode %s response: %v", op, err)
	}
	_ = client.Close()
	<-done
}

func TestStatusReflectsEngineState(t *testing.T) {
	s, _ := testServer(t)

	var st control.Status
	roundTrip(t, s, "status", &st)
	if !st.Running || st.Recording {
		t.Fatalf("status %+v", st)
	}

	var ack control.SimpleResponse
	roundTrip(t, s, "record-start", &ack)
	if !ack.OK {
		t.Fatalf("record-start: %+v", ack)
	}
	roundTrip(t, s, "status", &st)
	if !st.Recording {
		t.Fatalf("expected recording, status %+v", st)
	}
}

func TestRecordStopReturnsFinalText(t *testing.T) {
	s, op := testServer(t)

	var ack control.SimpleResponse
	roundTrip(t, s, "record-start", &ack)
	op.fn(make([]float32, 1600))

	var resp control.TextResponse
	roundTrip(t, s, "record-stop", &resp)
	if !resp.OK || resp.Text != "spoken words" {
		t.Fatalf("record-stop: %+v", resp)
	}

	roundTrip(t, s, "text", &resp)
	if resp.Text != "spoken words" || len(resp.Segments) != 1 {
		t.Fatalf("text: %+v", resp)
	}

	roundTrip(t, s, "clear-text", &ack)
	var cleared control.TextResponse
	roundTrip(t, s, "text", &cleared)
	if cleared.Text != "" || len(cleared.Segments) != 0 {
		t.Fatalf("text after clear: %+v", cleared)
	}
}

func TestPauseResumeOps(t *testing.T) {
	s, _ := testServer(t)

	var ack control.SimpleResponse
	roundTrip(t, s, "pause", &ack)
	var st control.Status
	roundTrip(t, s, "status", &st)
	if !st.Paused {
		t.Fatalf("expected paused, status %+v", st)
	}
	roundTrip(t, s, "resume", &ack)
	roundTrip(t, s, "status", &st)
	if st.Paused {
		t.Fatalf("expected resumed, status %+v", st)
	}
}

func TestUnknownOpRejected(t *testing.T) {
	s, _ := testServer(t)
	var resp control.SimpleResponse
	roundTrip(t, s, "reticulate", &resp)
	if resp.OK {
		t.Fatalf("unknown op accepted: %+v", resp)
	}
}

func TestTranscriptTailTrims(t *testing.T) {
	s, _ := testServer(t)
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		s.recordTranscript(text)
	}
	got := s.copyTranscripts()
	if len(got) != 3 {
		t.Fatalf("tail length %d want 3", len(got))
	}
	if got[0].Text != "three" || got[2].Text != "five" {
		t.Fatalf("tail %v", got)
	}
	for _, tr := range got {
		if time.Since(tr.Timestamp) > time.Minute {
			t.Fatalf("stale timestamp %v", tr.Timestamp)
		}
	}
}
