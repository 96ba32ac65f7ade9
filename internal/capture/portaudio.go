//go:build whisper

package capture

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
)

// PortAudioOpener opens microphone streams via PortAudio. Initialize is
// refcounted by portaudio itself, so one Initialize per opened stream is fine.
type PortAudioOpener struct {
	Logger *logrus.Logger
}

type paStream struct {
	stream *portaudio.Stream
	done   chan struct{}
	once   sync.Once
	logger *logrus.Logger
}

// Open opens the preferred (or default) input device and starts a reader
// goroutine that hands chunks to fn. Driver-level overflows are logged and
// never fatal.
func (o *PortAudioOpener) Open(deviceName string, p Params, fn ChunkFunc) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	dev, err := selectDevice(deviceName)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}

	buf := make([]float32, p.FrameSamples)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: p.Channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(p.SampleRate),
		FramesPerBuffer: p.FrameSamples,
	}, &buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("start stream: %w", err)
	}

	s := &paStream{stream: stream, done: make(chan struct{}), logger: o.Logger}
	go s.readLoop(buf, fn)
	o.Logger.Infof("listening on mic: %s @ %d Hz", dev.Name, p.SampleRate)
	return s, nil
}

func (s *paStream) readLoop(buf []float32, fn ChunkFunc) {
	for {
		select {
		case <-s.done:
			return
		default:
		}
		if err := s.stream.Read(); err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			// Overflow means the driver dropped samples; anything else is
			// reported out-of-band and we keep trying.
			s.logger.Warnf("stream read: %v", err)
			continue
		}
		fn(buf)
	}
}

func (s *paStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if e := s.stream.Stop(); e != nil {
			err = e
		}
		if e := s.stream.Close(); e != nil && err == nil {
			err = e
		}
		_ = portaudio.Terminate()
	})
	return err
}

func selectDevice(preferred string) (*portaudio.DeviceInfo, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if preferred != "" {
		for _, d := range devs {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(preferred)) {
				return d, nil
			}
		}
		return nil, fmt.Errorf("no input device matching %q", preferred)
	}
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		return def, nil
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no input devices found")
}

// NewOpener returns the PortAudio-backed opener.
func NewOpener(logger *logrus.Logger) Opener {
	return &PortAudioOpener{Logger: logger}
}
