package control

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"earshot/internal/config"
	"earshot/internal/doctor"
	"earshot/internal/hook"
	"earshot/internal/logging"

	"github.com/spf13/cobra"
)

// NewStatusCmd queries daemon status.
func NewStatusCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var status Status
			if err := request(cfg, "status", &status); err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
			}
			state := "listening"
			if status.Paused {
				state = "paused"
			}
			if status.Recording {
				state = "recording"
			}
			fmt.Printf("running: %v (%s)\nuptime: %.1fs\nlevel: %.3f\nbuffered: %d samples\n",
				status.Running, state, status.UptimeSec, status.Level, status.Buffered)
			for _, t := range status.Transcripts {
				fmt.Printf("%s  %s\n", t.Timestamp.Format("15:04:05"), t.Text)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

// NewHealthCmd pings the daemon.
func NewHealthCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Ping the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var resp SimpleResponse
			if err := request(cfg, "health", &resp); err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}
}

// NewPauseCmd suspends recognition without stopping capture.
func NewPauseCmd(cfgPath *string) *cobra.Command {
	return newAckCmd(cfgPath, "pause", "Pause recognition")
}

// NewResumeCmd resumes a paused daemon.
func NewResumeCmd(cfgPath *string) *cobra.Command {
	return newAckCmd(cfgPath, "resume", "Resume recognition")
}

func newAckCmd(cfgPath *string, op, short string) *cobra.Command {
	return &cobra.Command{
		Use:   op,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var resp SimpleResponse
			if err := request(cfg, op, &resp); err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("%s", resp.Message)
			}
			fmt.Println(resp.Message)
			return nil
		},
	}
}

// NewRecordCmd groups push-to-talk control.
func NewRecordCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Push-to-talk recording control",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Begin a recording span",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var resp SimpleResponse
			if err := request(cfg, "record-start", &resp); err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "End the span and print its transcription",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			var resp TextResponse
			if err := request(cfg, "record-stop", &resp); err != nil {
				return err
			}
			fmt.Println(resp.Text)
			return nil
		},
	})
	return cmd
}

// NewTextCmd prints accumulated text from completed spans.
func NewTextCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text",
		Short: "Show accumulated transcription text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if clear, _ := cmd.Flags().GetBool("clear"); clear {
				var ack SimpleResponse
				if err := request(cfg, "clear-text", &ack); err != nil {
					return err
				}
				fmt.Println(ack.Message)
				return nil
			}
			var resp TextResponse
			if err := request(cfg, "text", &resp); err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(resp)
			}
			fmt.Println(resp.Text)
			return nil
		},
	}
	cmd.Flags().Bool("clear", false, "clear accumulated text instead of printing it")
	cmd.Flags().Bool("json", false, "output JSON with per-span segments")
	return cmd
}

// NewClearBufferCmd drops pending audio in the daemon's sliding window.
func NewClearBufferCmd(cfgPath *string) *cobra.Command {
	return newAckCmd(cfgPath, "clear-buffer", "Discard buffered audio")
}

// NewTailLogCmd shows the last lines of the daemon log.
func NewTailLogCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tail-log",
		Short: "Show last 50 log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return tailFile(cfg.Paths.LogPath, 50)
		},
	}
}

func tailFile(path string, n int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			fmt.Println(l)
		}
	}
	return nil
}

// NewTestHookCmd sends sample text through the configured hook.
func NewTestHookCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test-hook \"some text\"",
		Short: "Send sample text through hook",
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
			r := hook.NewRunner(cfg, logger)
			return r.Run(cmd.Context(), hook.Job{Text: args[0], Timestamp: time.Now()})
		},
	}
}

// NewDoctorCmd runs environment checks.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check dependencies and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			results := doctor.Run(cfg)
			exitCode := 0
			for _, r := range results {
				status := "ok"
				if !r.Pass {
					status = "fail"
					exitCode = 1
				}
				fmt.Printf("%-12s %-4s %s\n", r.Name, status, r.Detail)
			}
			if exitCode != 0 {
				return fmt.Errorf("doctor found issues")
			}
			return nil
		},
	}
}
