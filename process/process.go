// Package process runs external tools such as ffmpeg in their own process
// group so cancellation reaches every child they spawn.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

const (
	defaultGracePeriod = 5 * time.Second
	// MaxStderr is how much trailing stderr a Result keeps.
	MaxStderr = 64 << 10
)

// Command is one invocation of an external binary.
type Command struct {
	Binary string
	Args   []string
	Dir    string
	// Env entries (KEY=value) are appended to the parent environment.
	Env   []string
	Stdin io.Reader
	// GracePeriod separates SIGTERM from SIGKILL on cancellation. Zero
	// means five seconds.
	GracePeriod time.Duration
}

func (c Command) String() string {
	return strings.TrimSpace(c.Binary + " " + strings.Join(c.Args, " "))
}

// Result is what a finished (or killed) process left behind.
type Result struct {
	Stdout []byte
	// Stderr holds at most MaxStderr trailing bytes.
	Stderr []byte
	// ExitCode is -1 when the process was killed by a signal or never ran.
	ExitCode int
	Duration time.Duration
}

// StderrTail returns the last n non-blank stderr lines, oldest first.
// ffmpeg prints its reason for failing last.
func (r *Result) StderrTail(n int) string {
	if r == nil || n <= 0 {
		return ""
	}
	var keep []string
	rest := bytes.TrimRight(r.Stderr, "\r\n\t ")
	for len(rest) > 0 && len(keep) < n {
		cut := bytes.LastIndexByte(rest, '\n')
		if line := strings.TrimSpace(string(rest[cut+1:])); line != "" {
			keep = append(keep, line)
		}
		if cut < 0 {
			break
		}
		rest = rest[:cut]
	}
	for i, j := 0, len(keep)-1; i < j; i, j = i+1, j-1 {
		keep[i], keep[j] = keep[j], keep[i]
	}
	return strings.Join(keep, "\n")
}

// Executor runs commands. Decoders take one so tests can fake ffmpeg.
type Executor interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, cmd Command) (*Result, error)

func (f ExecutorFunc) Run(ctx context.Context, cmd Command) (*Result, error) { return f(ctx, cmd) }

// Run starts cmd and waits for it. Cancelling ctx sends SIGTERM to the
// whole process group and SIGKILL once the grace period is over. A failed
// run still returns its Result so callers can read stderr.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.New("process: binary is required")
	}
	grace := cmd.GracePeriod
	if grace <= 0 {
		grace = defaultGracePeriod
	}

	var stdout bytes.Buffer
	stderr := &tailBuffer{max: MaxStderr}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // running caller-chosen binaries is the point
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.Stdin = cmd.Stdin
	c.Stdout = &stdout
	c.Stderr = stderr
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = grace

	began := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(began),
	}
	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("process: %s interrupted: %w", cmd.Binary, ctx.Err())
	}
	if reason := res.StderrTail(1); reason != "" {
		return res, fmt.Errorf("process: %s exited %d: %s: %w", cmd.Binary, res.ExitCode, reason, err)
	}
	return res, fmt.Errorf("process: %s exited %d: %w", cmd.Binary, res.ExitCode, err)
}

// tailBuffer keeps only the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) >= t.max {
		p = p[len(p)-t.max:]
		t.buf = append(t.buf[:0], p...)
		return n, nil
	}
	if over := len(t.buf) + len(p) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

func (t *tailBuffer) Bytes() []byte { return t.buf }
