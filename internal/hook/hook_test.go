package hook

import (
	"context"
	"testing"
	"time"

	"earshot/internal/config"
	"earshot/internal/logging"
)

func TestShouldRunCooldown(t *testing.T) {
	cfg, _ := config.Default()
	cfg.Hook.Command = "/bin/echo"
	cfg.Hook.CooldownSec = 0.5
	r := NewRunner(cfg, logging.NewTestLogger())

	if !r.ShouldRun() {
		t.Fatalf("first call should run")
	}
	if err := r.Run(context.Background(), Job{Text: "test", Timestamp: time.Now()}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.ShouldRun() {
		t.Fatalf("cooldown should block immediate subsequent run")
	}
	time.Sleep(time.Duration(cfg.Hook.CooldownSec*float64(time.Second)) + 20*time.Millisecond)
	if !r.ShouldRun() {
		t.Fatalf("should run after cooldown")
	}
}

func TestRunUsesPrefix(t *testing.T) {
	cfg, _ := config.Default()
	cfg.Hook.Command = "/bin/echo"
	cfg.Hook.Prefix = "heard: "

	r := NewRunner(cfg, logging.NewTestLogger())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Run(ctx, Job{Text: "hello", Timestamp: time.Now()}); err != nil {
		t.Fatalf("run echo: %v", err)
	}
}

func TestCommandArgsFromRawString(t *testing.T) {
	cfg, _ := config.Default()
	cfg.Hook.Command = "/bin/echo"
	cfg.Hook.ArgsRaw = `send --to "some channel"`
	r := NewRunner(cfg, logging.NewTestLogger())

	args, err := r.commandArgs()
	if err != nil {
		t.Fatalf("commandArgs: %v", err)
	}
	if len(args) != 3 || args[2] != "some channel" {
		t.Fatalf("args %v", args)
	}
	if err := r.Run(context.Background(), Job{Text: "hello", Timestamp: time.Now()}); err != nil {
		t.Fatalf("run with args_raw: %v", err)
	}
}

func TestCommandArgsListWinsOverRaw(t *testing.T) {
	cfg, _ := config.Default()
	cfg.Hook.Command = "/bin/echo"
	cfg.Hook.Args = []string{"-n"}
	cfg.Hook.ArgsRaw = "ignored raw"
	r := NewRunner(cfg, logging.NewTestLogger())

	args, err := r.commandArgs()
	if err != nil {
		t.Fatalf("commandArgs: %v", err)
	}
	if len(args) != 1 || args[0] != "-n" {
		t.Fatalf("args %v", args)
	}
}

func TestParseArgs(t *testing.T) {
	args, err := ParseArgs(`send --to "some channel"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(args) != 3 || args[2] != "some channel" {
		t.Fatalf("args %v", args)
	}
	args, err = ParseArgs("  ")
	if err != nil || len(args) != 0 {
		t.Fatalf("blank parse: %v %v", args, err)
	}
}
