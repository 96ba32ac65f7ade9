//go:build whisper

package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"earshot/internal/config"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/sirupsen/logrus"
)

// whisperRecognizer wraps a whisper.cpp model. A mutex serializes access:
// whisper contexts are not safe for concurrent use and the engine only ever
// has one recognition in flight anyway.
type whisperRecognizer struct {
	mu       sync.Mutex
	model    whisper.Model
	language string
	logger   *logrus.Logger
}

func newWhisperRecognizer(cfg *config.Config, logger *logrus.Logger) (Recognizer, error) {
	model, err := whisper.New(cfg.ASR.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &whisperRecognizer{
		model:    model,
		language: strings.TrimSpace(cfg.ASR.Language),
		logger:   logger,
	}, nil
}

func (r *whisperRecognizer) Recognize(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sampleRate != whisper.SampleRate {
		return "", fmt.Errorf("whisper requires %d Hz input (got %d)", whisper.SampleRate, sampleRate)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	wctx, err := r.model.NewContext()
	if err != nil {
		return "", err
	}
	wctx.SetThreads(uint(runtime.NumCPU()))
	if r.language != "" {
		if err := wctx.SetLanguage(r.language); err != nil {
			r.logger.Warnf("set language: %v", err)
		}
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", err
	}

	var b strings.Builder
	for {
		seg, err := wctx.NextSegment()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		b.WriteString(seg.Text)
		if !strings.HasSuffix(seg.Text, " ") {
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func (r *whisperRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.model != nil {
		err := r.model.Close()
		r.model = nil
		return err
	}
	return nil
}
