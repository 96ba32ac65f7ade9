package hook

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"earshot/internal/config"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// Job represents a hook invocation request.
type Job struct {
	Text      string
	Timestamp time.Time
}

// Runner executes the configured output command with cooldown and prefix
// handling. It is how recognized text leaves the daemon.
type Runner struct {
	cfg      *config.Config
	logger   *logrus.Logger
	mu       sync.Mutex
	lastRun  time.Time
	hostname string
}

func NewRunner(cfg *config.Config, logger *logrus.Logger) *Runner {
	host, _ := os.Hostname()
	return &Runner{
		cfg:      cfg,
		logger:   logger,
		hostname: host,
	}
}

// ShouldRun returns whether cooldown allows a new hook.
func (r *Runner) ShouldRun() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.Hook.CooldownSec <= 0 {
		return true
	}
	return time.Since(r.lastRun).Seconds() >= r.cfg.Hook.CooldownSec
}

// Run executes the configured command with the text payload.
func (r *Runner) Run(ctx context.Context, job Job) error {
	r.mu.Lock()
	r.lastRun = time.Now()
	r.mu.Unlock()

	cmdStr := r.cfg.Hook.Command
	if cmdStr == "" {
		return fmt.Errorf("no hook.command configured")
	}
	args, err := r.commandArgs()
	if err != nil {
		return fmt.Errorf("hook args: %w", err)
	}

	prefix := strings.ReplaceAll(r.cfg.Hook.Prefix, "${hostname}", r.hostname)
	payload := strings.TrimSpace(prefix + job.Text)
	args = append(args, payload)

	runCtx := ctx
	var cancel context.CancelFunc
	if r.cfg.Hook.TimeoutSec > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(float64(time.Second)*r.cfg.Hook.TimeoutSec))
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, cmdStr, args...)
	cmd.Env = os.Environ()
	for k, v := range r.cfg.Hook.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Env, fmt.Sprintf("EARSHOT_TEXT=%s", job.Text))

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		r.logger.Infof("hook output: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("hook failed: %w", err)
	}
	return nil
}

// commandArgs resolves the configured argument list. hook.args wins;
// hook.args_raw is the shell-style fallback.
func (r *Runner) commandArgs() ([]string, error) {
	if len(r.cfg.Hook.Args) > 0 {
		return append([]string{}, r.cfg.Hook.Args...), nil
	}
	return ParseArgs(r.cfg.Hook.ArgsRaw)
}

// ParseArgs allows hook args to be configured as a single shell-style string.
func ParseArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	return shlex.Split(raw)
}
