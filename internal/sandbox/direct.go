package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"scenesmith/internal/logging"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultMaxOutput = 64 * 1024
)

// RunnerConfig bounds what a DirectRunner lets processes do.
type RunnerConfig struct {
	DefaultTimeout time.Duration
	MaxOutputBytes int64
	AllowedEnv     []string
}

// DefaultRunnerConfig returns the standard limits.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		DefaultTimeout: defaultTimeout,
		MaxOutputBytes: defaultMaxOutput,
		AllowedEnv:     []string{"PATH", "HOME", "TMPDIR", "LANG"},
	}
}

// DirectRunner executes commands on the host under a timeout context
// with size-capped output. There is no privilege isolation; containment
// comes from the timeout, the output cap, and the throwaway working dir.
type DirectRunner struct {
	config RunnerConfig
}

// NewDirectRunner creates a runner with default limits.
func NewDirectRunner() *DirectRunner {
	return NewDirectRunnerWithConfig(DefaultRunnerConfig())
}

// NewDirectRunnerWithConfig creates a runner with custom limits.
func NewDirectRunnerWithConfig(config RunnerConfig) *DirectRunner {
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = defaultTimeout
	}
	if config.MaxOutputBytes <= 0 {
		config.MaxOutputBytes = defaultMaxOutput
	}
	return &DirectRunner{config: config}
}

// Run implements Runner.
func (r *DirectRunner) Run(ctx context.Context, cmd Command) (*ExecutionResult, error) {
	log := logging.Get(logging.CategorySandbox)

	if cmd.Name == "" {
		return nil, fmt.Errorf("command name is required")
	}

	dir := cmd.Dir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "scenesmith-run-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create working dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}
	maxOutput := cmd.MaxOutput
	if maxOutput <= 0 {
		maxOutput = r.config.MaxOutputBytes
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	execCmd := exec.CommandContext(execCtx, cmd.Name, cmd.Args...)
	execCmd.Dir = dir
	execCmd.Env = r.buildEnvironment()

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: maxOutput}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: maxOutput}
	execCmd.Stdout = stdoutLimited
	execCmd.Stderr = stderrLimited

	log.Debug("running %s %v (dir=%s, timeout=%s)", cmd.Name, cmd.Args, dir, timeout)
	started := time.Now()
	err := execCmd.Run()

	result := &ExecutionResult{
		ExitCode: 0,
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(started),
	}
	if stdoutLimited.truncated || stderrLimited.truncated {
		log.Warn("output of %s truncated at %d bytes", cmd.Name, maxOutput)
	}

	if err != nil {
		switch {
		case execCtx.Err() == context.DeadlineExceeded:
			result.Killed = true
			result.KillReason = fmt.Sprintf("timeout after %s", timeout)
			result.ExitCode = -1
			log.Warn("%s killed: %s", cmd.Name, result.KillReason)
		case execCtx.Err() == context.Canceled:
			result.Killed = true
			result.KillReason = "context canceled"
			result.ExitCode = -1
		default:
			if exitErr, ok := err.(*exec.ExitError); ok {
				result.ExitCode = exitErr.ExitCode()
				log.Debug("%s exited non-zero: %d", cmd.Name, result.ExitCode)
			} else {
				return nil, fmt.Errorf("failed to start %s: %w", cmd.Name, err)
			}
		}
	}

	return result, nil
}

func (r *DirectRunner) buildEnvironment() []string {
	env := make([]string, 0, len(r.config.AllowedEnv))
	for _, key := range r.config.AllowedEnv {
		if val := os.Getenv(key); val != "" {
			env = append(env, key+"="+val)
		}
	}
	return env
}

// limitedWriter caps total bytes written, silently discarding the rest
// so the process never sees a write error.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.written >= lw.max {
		lw.truncated = true
		return n, nil
	}
	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
