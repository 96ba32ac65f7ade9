//go:build !whisper

package asr

import (
	"fmt"

	"earshot/internal/config"

	"github.com/sirupsen/logrus"
)

func newWhisperRecognizer(_ *config.Config, _ *logrus.Logger) (Recognizer, error) {
	return nil, fmt.Errorf("built without whisper support; rebuild with -tags whisper")
}
