package asr

import (
	"context"

	"earshot/internal/config"

	"github.com/sirupsen/logrus"
)

// Recognizer converts audio into text. Implementations may be slow; callers
// must treat Recognize as a blocking call and never invoke it while holding
// shared locks.
type Recognizer interface {
	// Recognize transcribes mono float32 samples at the given rate.
	// An empty string with nil error means nothing was recognized.
	Recognize(ctx context.Context, samples []float32, sampleRate int) (string, error)
	Close() error
}

// NewRecognizer returns the whisper recognizer (requires -tags whisper).
func NewRecognizer(cfg *config.Config, logger *logrus.Logger) (Recognizer, error) {
	return newWhisperRecognizer(cfg, logger)
}
