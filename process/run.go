package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// DefaultGracePeriod is the SIGTERM to SIGKILL delay when none is set.
const DefaultGracePeriod = 5 * time.Second

var (
	// ErrNotStarted means the binary could not be launched.
	ErrNotStarted = errors.New("process: not started")
	// ErrKilled means ctx ended before the process exited.
	ErrKilled = errors.New("process: killed by context")
)

// Command is one subprocess invocation. Args are passed as an argument
// vector and never through a shell.
type Command struct {
	Binary      string
	Args        []string
	GracePeriod time.Duration
}

// Result is what a finished, killed, or unstartable process left behind.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int // -1 when killed by a signal or never started
	Duration time.Duration
	Started  bool
}

// StderrText returns stderr without surrounding whitespace.
func (r *Result) StderrText() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Stderr))
}

// Run starts cmd in its own process group and waits for it. When ctx ends
// the whole group gets SIGTERM, then SIGKILL after the grace period.
// Whenever Binary is set the Result is non-nil, errors included.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.New("process: binary is required")
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // argv comes from config and temp paths
	var stdout, stderr bytes.Buffer
	c.Stdout, c.Stderr = &stdout, &stderr
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = cmd.GracePeriod
	if c.WaitDelay <= 0 {
		c.WaitDelay = DefaultGracePeriod
	}

	began := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(began),
		Started:  c.Process != nil,
	}

	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("%w: %w", ErrKilled, ctx.Err())
	case !res.Started:
		return res, fmt.Errorf("%w: %s: %w", ErrNotStarted, cmd.Binary, err)
	default:
		return res, fmt.Errorf("process: %s exited with %d: %w", cmd.Binary, res.ExitCode, err)
	}
}
