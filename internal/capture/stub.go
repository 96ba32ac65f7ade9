//go:build !whisper

package capture

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type errOpener struct{}

func (errOpener) Open(string, Params, ChunkFunc) (Stream, error) {
	return nil, fmt.Errorf("built without audio support; rebuild with -tags whisper")
}

// NewOpener returns an opener that always fails; microphone capture needs
// the whisper build.
func NewOpener(_ *logrus.Logger) Opener {
	return errOpener{}
}
