//go:build whisper

package control

import (
	"fmt"
	"strings"
	"time"

	"earshot/internal/asr"
	"earshot/internal/config"
	"earshot/internal/hook"
	"earshot/internal/logging"
	"earshot/internal/wavio"

	vad "github.com/maxhawkins/go-webrtcvad"
	"github.com/spf13/cobra"
)

// NewTranscribeCmd transcribes a WAV file and optionally fires the hook.
func NewTranscribeCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <wavfile>",
		Short: "Transcribe a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Configure(cfg)
			if err != nil {
				return err
			}
			wantHook, _ := cmd.Flags().GetBool("hook")
			keepSilence, _ := cmd.Flags().GetBool("keep-silence")

			samples, err := wavio.Read(args[0], cfg.Audio.SampleRate)
			if err != nil {
				return err
			}
			if !keepSilence {
				trimmed, err := trimSilence(samples, cfg.Audio.SampleRate)
				if err != nil {
					logger.Warnf("silence trim unavailable: %v", err)
				} else if len(trimmed) == 0 {
					return fmt.Errorf("no speech detected in %s", args[0])
				} else {
					samples = trimmed
				}
			}

			rec, err := asr.NewRecognizer(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close() }()

			txt, err := rec.Recognize(cmd.Context(), samples, cfg.Audio.SampleRate)
			if err != nil {
				return err
			}
			txt = strings.TrimSpace(txt)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), txt)

			if !wantHook {
				return nil
			}
			if cfg.Hook.Command == "" {
				return fmt.Errorf("no hook configured; set hook.command")
			}
			if cfg.Hook.MinChars > 0 && len(txt) < cfg.Hook.MinChars {
				return fmt.Errorf("skipped: len(text)=%d < min_chars=%d", len(txt), cfg.Hook.MinChars)
			}
			r := hook.NewRunner(cfg, logger)
			return r.Run(cmd.Context(), hook.Job{Text: txt, Timestamp: time.Now()})
		},
	}
	cmd.Flags().Bool("hook", false, "also send through configured hook")
	cmd.Flags().Bool("keep-silence", false, "skip leading/trailing silence removal")
	return cmd
}

// trimSilence drops leading and trailing non-speech using the webrtc VAD.
// Frames are 30ms; two frames of padding are kept around the speech span.
func trimSilence(samples []float32, rate int) ([]float32, error) {
	switch rate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("vad needs 8k/16k/32k/48k input (got %d)", rate)
	}
	v, err := vad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(2); err != nil {
		return nil, err
	}
	frame := rate * 30 / 1000
	var voiced []bool
	for off := 0; off+frame <= len(samples); off += frame {
		active, err := v.Process(rate, pcmBytes(samples[off:off+frame]))
		if err != nil {
			return nil, err
		}
		voiced = append(voiced, active)
	}
	start, end := trimBounds(voiced, 2)
	if start == 0 && end == 0 {
		return nil, nil
	}
	lo, hi := start*frame, end*frame
	if hi > len(samples) {
		hi = len(samples)
	}
	return samples[lo:hi], nil
}
