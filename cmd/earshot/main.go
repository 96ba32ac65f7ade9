package main

import (
	"fmt"
	"os"

	"earshot/internal/control"
	"earshot/internal/daemon"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "earshot",
		Short: "Earshot — local realtime speech-to-text daemon",
		Long: `Earshot keeps a sliding window of microphone audio, transcribes it locally
with whisper.cpp, and streams deduplicated results to transcripts and hooks.
It runs continuously or as push-to-talk: record start/stop brackets a span
and returns its transcription.

Key commands:
  start|stop|restart        Daemon lifecycle
  status [--json]           Uptime, level, last transcripts
  record start|stop         Push-to-talk span control
  text [--clear]            Accumulated transcription text
  mic list|set              Select microphone
  doctor|setup              Check deps / download default model
  models list|download|set  Manage whisper.cpp models
  transcribe <wav>          One-shot file transcription
  health|tail-log|test-hook Liveness, log tail, manual hook

Notable flags/env:
  --mode <mode>             continuous or push-to-talk for this run
  --metrics-addr <addr>     Enable /metrics (plain text counters)
  Env overrides: EARSHOT_MODE, EARSHOT_METRICS_ADDR,
                 EARSHOT_LOG_LEVEL/FORMAT, EARSHOT_TRANSCRIPTS_ENABLED,
                 EARSHOT_VAD_THRESHOLD`,
		Example: `  earshot start --mode push-to-talk
  earshot record start
  earshot record stop
  earshot text
  earshot mic list
  earshot models download ggml-medium-q5_1.bin
  earshot transcribe note.wav
  earshot test-hook "make it so"`,
		DisableFlagsInUseLine: true,
	}

	root.Version = version
	root.SetVersionTemplate("Earshot v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/earshot/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(daemon.NewStartCmd(cfgPath))
	root.AddCommand(daemon.NewStopCmd(cfgPath))
	root.AddCommand(daemon.NewRestartCmd(cfgPath))
	root.AddCommand(control.NewStatusCmd(cfgPath))
	root.AddCommand(control.NewHealthCmd(cfgPath))
	root.AddCommand(control.NewPauseCmd(cfgPath))
	root.AddCommand(control.NewResumeCmd(cfgPath))
	root.AddCommand(control.NewRecordCmd(cfgPath))
	root.AddCommand(control.NewTextCmd(cfgPath))
	root.AddCommand(control.NewClearBufferCmd(cfgPath))
	root.AddCommand(control.NewTailLogCmd(cfgPath))
	root.AddCommand(control.NewMicCmd(cfgPath))
	root.AddCommand(control.NewTestHookCmd(cfgPath))
	root.AddCommand(control.NewDoctorCmd(cfgPath))
	root.AddCommand(control.NewSetupCmd(cfgPath))
	root.AddCommand(control.NewTranscribeCmd(cfgPath))
	root.AddCommand(control.NewModelsCmd(cfgPath))

	// Hidden internal serve command used by start.
	root.AddCommand(daemon.NewServeCmd(cfgPath))

	applyColorHelp(root)

	return root.Execute()
}

func applyColorHelp(root *cobra.Command) {
	const (
		boldBlue = "\033[1;34m"
		green    = "\033[32m"
		bold     = "\033[1m"
		dim      = "\033[2m"
		reset    = "\033[0m"
	)
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		write := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }
		writeln := func(line string) { _, _ = fmt.Fprintln(out, line) }

		write("%sEarshot%s — local realtime speech-to-text daemon %s(v%s)%s\n", boldBlue, reset, dim, version, reset)
		write("%sListens on mic, transcribes locally, keeps transcripts and runs your hook.%s\n\n", dim, reset)

		write("%sUsage%s\n", bold, reset)
		write("  earshot [command] [flags]\n\n")

		write("%sKey commands%s\n", bold, reset)
		writeln("  start|stop|restart          daemon lifecycle")
		writeln("  status [--json]             uptime, level, last transcripts")
		writeln("  record start|stop           push-to-talk span control")
		writeln("  text [--clear]              accumulated transcription text")
		writeln("  pause|resume                suspend/resume recognition")
		writeln("  mic list|set                select input device")
		writeln("  doctor                      check deps/model/hook/portaudio")
		writeln("  setup                       download default whisper model")
		writeln("  models list|download|set    manage whisper.cpp models")
		writeln("  transcribe <wav>            one-shot file transcription")
		writeln("  health                      control-socket liveness ping")
		writeln("  tail-log                    show last log lines")
		writeln("  test-hook \"text\"           invoke hook manually")
		writeln("")

		write("%sNotable flags & env%s\n", bold, reset)
		writeln("  --mode <mode>           continuous or push-to-talk for this run")
		writeln("  --metrics-addr <addr>   enable /metrics")
		writeln("  -c, --config <path>     config file (default ~/.config/earshot/config.toml)")
		writeln("  Env: EARSHOT_MODE=push-to-talk, EARSHOT_METRICS_ADDR=host:port,")
		writeln("       EARSHOT_LOG_LEVEL=debug, EARSHOT_LOG_FORMAT=json,")
		writeln("       EARSHOT_TRANSCRIPTS_ENABLED=0, EARSHOT_VAD_THRESHOLD=0.02")
		writeln("")

		write("%sExamples%s\n", bold, reset)
		writeln("  earshot start --mode push-to-talk")
		writeln("  earshot record start")
		writeln("  earshot record stop")
		writeln("  earshot text --clear")
		writeln("  earshot models download ggml-medium-q5_1.bin")
		writeln("  earshot transcribe note.wav --hook")
		writeln("")

		write("%sCommands%s\n", bold, reset)
		for _, c := range cmd.Commands() {
			if c.Hidden {
				continue
			}
			write("  %s%-15s%s %s\n", green, c.Name(), reset, c.Short)
		}
	})
}
