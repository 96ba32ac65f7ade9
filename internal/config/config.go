package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Engine operating modes.
const (
	ModeContinuous = "continuous"
	ModePushToTalk = "push-to-talk"
)

const (
	defaultStateDirLinux = ".local/state/earshot"
	defaultConfigDir     = ".config/earshot"
)

// Config holds user configuration loaded from TOML. It is constructed once
// and handed by reference to the engine; there is no ambient global.
type Config struct {
	Audio struct {
		DeviceName string `toml:"device_name"`
		SampleRate int    `toml:"sample_rate"`
		Channels   int    `toml:"channels"`
		ChunkMS    int    `toml:"chunk_ms"`
	} `toml:"audio"`

	Engine struct {
		BufferSeconds   float64 `toml:"buffer_seconds"`
		MinAudioSeconds float64 `toml:"min_audio_seconds"`
		VADThreshold    float64 `toml:"vad_threshold"` // RMS gate; 0 disables
		Accumulate      bool    `toml:"accumulate"`
		Mode            string  `toml:"mode"` // continuous, push-to-talk
		PollMS          int     `toml:"poll_ms"`
		StopTimeoutMS   int     `toml:"stop_timeout_ms"`
	} `toml:"engine"`

	ASR struct {
		ModelPath string `toml:"model_path"`
		Language  string `toml:"language"`
	} `toml:"asr"`

	Hook struct {
		Command     string            `toml:"command"`
		Args        []string          `toml:"args"`
		ArgsRaw     string            `toml:"args_raw"` // shell-style alternative to args
		Prefix      string            `toml:"prefix"`
		CooldownSec float64           `toml:"cooldown_sec"`
		MinChars    int               `toml:"min_chars"`
		QueueSize   int               `toml:"queue_size"`
		TimeoutSec  float64           `toml:"timeout_sec"`
		Env         map[string]string `toml:"env"`
	} `toml:"hook"`

	Logging struct {
		Level  string `toml:"level"`  // debug, info, warn, error
		Format string `toml:"format"` // text, json
		Stdout bool   `toml:"stdout"`
	} `toml:"logging"`

	Paths struct {
		StateDir       string `toml:"state_dir"`
		LogPath        string `toml:"log_path"`
		TranscriptPath string `toml:"transcript_path"`
		SocketPath     string `toml:"socket_path"`
		PidPath        string `toml:"pid_path"`
		ConfigPath     string `toml:"-"`
	} `toml:"paths"`

	Metrics struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
	} `toml:"metrics"`

	Transcripts struct {
		Enabled bool `toml:"enabled"`
		Tail    int  `toml:"tail"`
	} `toml:"transcripts"`

	Recordings struct {
		Enabled bool   `toml:"enabled"`
		Dir     string `toml:"dir"`
	} `toml:"recordings"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	// macOS prefers ~/Library/Application Support/earshot for state/logs
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "earshot")
	}

	cfg := &Config{}

	cfg.Audio.SampleRate = 16000
	cfg.Audio.Channels = 1
	cfg.Audio.ChunkMS = 100

	cfg.Engine.BufferSeconds = 3.0
	cfg.Engine.MinAudioSeconds = 1.5
	cfg.Engine.VADThreshold = 0
	cfg.Engine.Mode = ModeContinuous
	cfg.Engine.PollMS = 100
	cfg.Engine.StopTimeoutMS = 1000

	cfg.ASR.ModelPath = filepath.Join(stateDir, "models", "ggml-base.en-q5_1.bin")
	cfg.ASR.Language = "auto"

	cfg.Hook.CooldownSec = 1.0
	cfg.Hook.QueueSize = 16
	cfg.Hook.TimeoutSec = 5
	cfg.Hook.Env = map[string]string{}

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "earshot.log")
	cfg.Paths.TranscriptPath = filepath.Join(stateDir, "transcripts.log")
	cfg.Paths.SocketPath = filepath.Join(stateDir, "earshot.sock")
	cfg.Paths.PidPath = filepath.Join(stateDir, "earshot.pid")

	cfg.Metrics.Enabled = false
	cfg.Metrics.Addr = "127.0.0.1:9327"

	cfg.Transcripts.Enabled = true
	cfg.Transcripts.Tail = 10

	cfg.Recordings.Enabled = false
	cfg.Recordings.Dir = filepath.Join(stateDir, "recordings")

	return cfg, nil
}

// Load loads config from file, applying defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, defaultConfigDir, "config.toml")
	}

	// Read if exists; otherwise write template.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
			if err := Save(cfg, path); err != nil {
				return nil, err
			}
			cfg.Paths.ConfigPath = path
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Paths.ConfigPath = path
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// Validate rejects option combinations the engine cannot run with.
func Validate(cfg *Config) error {
	if cfg.Audio.Channels != 1 {
		return fmt.Errorf("only mono input supported; set audio.channels = 1")
	}
	if cfg.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive (got %d)", cfg.Audio.SampleRate)
	}
	if cfg.Audio.ChunkMS <= 0 {
		return fmt.Errorf("audio.chunk_ms must be positive (got %d)", cfg.Audio.ChunkMS)
	}
	if cfg.Engine.BufferSeconds <= 0 {
		return fmt.Errorf("engine.buffer_seconds must be positive (got %g)", cfg.Engine.BufferSeconds)
	}
	if cfg.Engine.MinAudioSeconds < 0 {
		return fmt.Errorf("engine.min_audio_seconds must not be negative (got %g)", cfg.Engine.MinAudioSeconds)
	}
	if cfg.Engine.VADThreshold < 0 {
		return fmt.Errorf("engine.vad_threshold must not be negative (got %g)", cfg.Engine.VADThreshold)
	}
	switch cfg.Engine.Mode {
	case ModeContinuous, ModePushToTalk:
	default:
		return fmt.Errorf("engine.mode must be %q or %q (got %q)", ModeContinuous, ModePushToTalk, cfg.Engine.Mode)
	}
	return nil
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	for _, p := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.LogPath), filepath.Dir(cfg.Paths.TranscriptPath)} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EARSHOT_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
	if v := os.Getenv("EARSHOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EARSHOT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("EARSHOT_TRANSCRIPTS_ENABLED"); v != "" {
		cfg.Transcripts.Enabled = v != "0" && strings.ToLower(v) != "false"
	}
	if v := os.Getenv("EARSHOT_VAD_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Engine.VADThreshold = f
		}
	}
	if v := os.Getenv("EARSHOT_MODE"); v != "" {
		cfg.Engine.Mode = v
	}
}
