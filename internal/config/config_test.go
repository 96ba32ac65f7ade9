package config

import (
	"os"
	"testing"
)

func TestEnvOverrides(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = "/tmp/config" // avoid creation

	t.Setenv("EARSHOT_METRICS_ADDR", "1.2.3.4:9999")
	t.Setenv("EARSHOT_LOG_LEVEL", "debug")
	t.Setenv("EARSHOT_LOG_FORMAT", "json")
	t.Setenv("EARSHOT_VAD_THRESHOLD", "0.05")
	t.Setenv("EARSHOT_MODE", ModePushToTalk)

	applyEnvOverrides(cfg)

	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != "1.2.3.4:9999" {
		t.Fatalf("metrics override failed: %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging overrides failed: %+v", cfg.Logging)
	}
	if cfg.Engine.VADThreshold != 0.05 {
		t.Fatalf("vad threshold override failed: %g", cfg.Engine.VADThreshold)
	}
	if cfg.Engine.Mode != ModePushToTalk {
		t.Fatalf("mode override failed: %q", cfg.Engine.Mode)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.toml"

	cfg, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Paths.ConfigPath = path
	cfg.Engine.VADThreshold = 0.02
	cfg.Engine.Accumulate = true
	cfg.Hook.Command = "/bin/echo"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Engine.VADThreshold != 0.02 || !loaded.Engine.Accumulate {
		t.Fatalf("engine options did not persist: %+v", loaded.Engine)
	}
	if loaded.Hook.Command != "/bin/echo" {
		t.Fatalf("expected hook command to persist")
	}

	// cleanup to avoid residue
	_ = os.Remove(path)
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg, _ := Default()
	cfg.Engine.Mode = "dictation"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestValidateRejectsStereo(t *testing.T) {
	cfg, _ := Default()
	cfg.Audio.Channels = 2
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for stereo input")
	}
}
