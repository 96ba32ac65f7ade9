package run

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"earshot/internal/asr"
	"earshot/internal/capture"
	"earshot/internal/config"
	"earshot/internal/control"
	"earshot/internal/engine"
	"earshot/internal/hook"
	"earshot/internal/wavio"

	"github.com/sirupsen/logrus"
)

// Server hosts the recognition engine: it drains engine events, keeps a
// transcript tail, dispatches hooks, and answers the control socket.
type Server struct {
	cfg       *config.Config
	logger    *logrus.Logger
	eng       *engine.Engine
	hook      *hook.Runner
	startedAt time.Time

	transcriptsMu sync.Mutex
	transcripts   []control.Transcript

	metrics metrics
	hookCh  chan hook.Job
}

func newServer(cfg *config.Config, logger *logrus.Logger, eng *engine.Engine) *Server {
	queue := cfg.Hook.QueueSize
	if queue < 1 {
		queue = 1
	}
	return &Server{
		cfg:         cfg,
		logger:      logger,
		eng:         eng,
		hook:        hook.NewRunner(cfg, logger),
		startedAt:   time.Now(),
		transcripts: make([]control.Transcript, 0, cfg.Transcripts.Tail),
		hookCh:      make(chan hook.Job, queue),
	}
}

// Serve runs the daemon until interrupted.
func Serve(cfg *config.Config, logger *logrus.Logger) error {
	if err := config.MustStatePaths(cfg); err != nil {
		return err
	}
	// Write pid file.
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(cfg.Paths.PidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("remove pid file: %v", err)
		}
	}()
	// Ensure socket removed
	if err := os.Remove(cfg.Paths.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debugf("remove stale socket: %v", err)
	}

	rec, err := asr.NewRecognizer(cfg, logger)
	if err != nil {
		return fmt.Errorf("asr init: %w", err)
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Warnf("close recognizer: %v", err)
		}
	}()

	eng := engine.New(engine.OptionsFromConfig(cfg), rec, capture.NewOpener(logger), logger)
	srv := newServer(cfg, logger, eng)

	if err := eng.Start(cfg.Audio.DeviceName); err != nil {
		return err
	}
	defer eng.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go srv.controlLoop(ctx)
	go srv.eventLoop(ctx)
	go srv.hookWorker(ctx)
	if cfg.Metrics.Enabled {
		go srv.metricsServe(ctx.Done(), cfg.Metrics.Addr, logger)
	}

	logger.Infof("earshot serving in %s mode", cfg.Engine.Mode)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	select {
	case s := <-sigCh:
		logger.Infof("received signal %s, shutting down", s)
		cancel()
	case <-ctx.Done():
	}
	return nil
}

// eventLoop drains the engine's event queue on the server's own schedule;
// nothing here runs on the capture or recognition goroutines.
func (s *Server) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.eng.Events():
			s.handleEvent(ctx, ev)
		}
	}
}

func (s *Server) handleEvent(_ context.Context, ev engine.Event) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}
	switch ev.Kind {
	case engine.EventResult:
		s.metrics.incHeard()
		s.logger.Infof("heard: %q", text)
	case engine.EventSegment:
		s.metrics.incSegments()
		s.logger.Infof("segment: %q", text)
		s.saveRecording(ev)
	}
	s.recordTranscript(text)
	s.dispatchHook(text)
}

func (s *Server) dispatchHook(text string) {
	if s.cfg.Hook.Command == "" {
		return
	}
	if s.cfg.Hook.MinChars > 0 && len(text) < s.cfg.Hook.MinChars {
		return
	}
	if !s.hook.ShouldRun() {
		s.logger.Debug("hook skipped (cooldown)")
		s.metrics.incSkipped()
		return
	}
	job := hook.Job{Text: text, Timestamp: time.Now()}
	select {
	case s.hookCh <- job:
	default:
		s.metrics.incDropped()
		s.logger.Warn("hook queue full, dropping job")
	}
}

// saveRecording persists a completed push-to-talk span as WAV.
func (s *Server) saveRecording(ev engine.Event) {
	if !s.cfg.Recordings.Enabled || len(ev.Samples) == 0 {
		return
	}
	if err := os.MkdirAll(s.cfg.Recordings.Dir, 0o755); err != nil {
		s.logger.Warnf("recordings dir: %v", err)
		return
	}
	name := ev.Time.Format("20060102-150405.000") + ".wav"
	path := filepath.Join(s.cfg.Recordings.Dir, name)
	if err := wavio.Write(path, ev.Samples, s.cfg.Audio.SampleRate); err != nil {
		s.logger.Warnf("save recording: %v", err)
		return
	}
	s.logger.Debugf("saved recording %s", path)
}

func (s *Server) recordTranscript(text string) {
	if !s.cfg.Transcripts.Enabled {
		return
	}
	entry := control.Transcript{
		Text:      text,
		Timestamp: time.Now(),
	}
	s.transcriptsMu.Lock()
	s.transcripts = append(s.transcripts, entry)
	if len(s.transcripts) > s.cfg.Transcripts.Tail {
		s.transcripts = s.transcripts[len(s.transcripts)-s.cfg.Transcripts.Tail:]
	}
	s.transcriptsMu.Unlock()
	// append to file
	f, err := os.OpenFile(s.cfg.Paths.TranscriptPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		if _, err := fmt.Fprintf(f, "%s\t%s\n", entry.Timestamp.Format(time.RFC3339), entry.Text); err != nil {
			s.logger.Warnf("write transcript: %v", err)
		}
		_ = f.Close()
	}
}

func (s *Server) copyTranscripts() []control.Transcript {
	s.transcriptsMu.Lock()
	defer s.transcriptsMu.Unlock()
	out := make([]control.Transcript, len(s.transcripts))
	copy(out, s.transcripts)
	return out
}

func (s *Server) controlLoop(ctx context.Context) {
	ln, err := net.Listen("unix", s.cfg.Paths.SocketPath)
	if err != nil {
		s.logger.Errorf("control listen: %v", err)
		return
	}
	defer func() {
		if err := ln.Close(); err != nil && ctx.Err() == nil {
			s.logger.Warnf("control listener close: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Errorf("control accept: %v", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && ctx.Err() == nil {
			s.logger.Warnf("control connection close: %v", err)
		}
	}()
	sc := bufio.NewScanner(conn)
	if !sc.Scan() {
		return
	}
	var req control.Request
	if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
		return
	}
	s.handleRequest(ctx, req, conn)
}

func (s *Server) handleRequest(ctx context.Context, req control.Request, conn net.Conn) {
	enc := json.NewEncoder(conn)
	switch req.Op {
	case "status":
		st := s.eng.Snapshot()
		_ = enc.Encode(control.Status{
			Running:     st.Running,
			Paused:      st.Paused,
			Recording:   st.Recording,
			UptimeSec:   time.Since(s.startedAt).Seconds(),
			Level:       st.Level,
			Buffered:    st.Buffered,
			Transcripts: s.copyTranscripts(),
		})
	case "health":
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "ok"})
	case "pause":
		s.eng.Pause()
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "paused"})
	case "resume":
		s.eng.Resume()
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "resumed"})
	case "record-start":
		s.eng.StartRecording()
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "recording"})
	case "record-stop":
		text := s.eng.StopRecording(ctx)
		_ = enc.Encode(control.TextResponse{OK: true, Text: text})
	case "text":
		_ = enc.Encode(control.TextResponse{
			OK:       true,
			Text:     s.eng.AccumulatedText(),
			Segments: s.eng.AccumulatedSegments(),
		})
	case "clear-text":
		s.eng.ClearAccumulatedText()
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "cleared"})
	case "clear-buffer":
		s.eng.ClearBuffer()
		_ = enc.Encode(control.SimpleResponse{OK: true, Message: "cleared"})
	default:
		_ = enc.Encode(control.SimpleResponse{OK: false, Message: fmt.Sprintf("unknown op %q", req.Op)})
	}
}
