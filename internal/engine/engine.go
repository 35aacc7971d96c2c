// Package engine runs the external analysis engine as one subprocess per
// invocation and maps every way the process can end to a typed outcome.
package engine

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Invocation describes a single engine run. It is created per call and
// discarded once the call resolves; it is never shared between calls.
type Invocation struct {
	// Args is the full argument vector. Args[0] is the executable.
	Args []string
	// Dir is the working directory for the process.
	Dir string
	// Env holds KEY=VALUE overrides appended to the parent environment.
	Env []string
	// Timeout bounds the whole invocation. Zero or negative means the
	// invocation is unbounded; use NoTimeout to make that explicit for
	// operations known to run long.
	Timeout   time.Duration
	NoTimeout bool
}

// Result holds the trimmed output of a process that exited cleanly with
// code zero.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes one invocation. Implementations must be safe for
// concurrent use; each call owns its own process handle, buffers and timer.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

// ExecRunner is the os/exec backed Runner used in production.
type ExecRunner struct{}

// Run starts the process with stdin closed, drains stdout and stderr as they
// arrive, and waits for termination, the timeout, or context cancellation.
// On timeout the process is killed unconditionally; a hung engine must not
// linger. All pipes, goroutines and the timer are released on every path.
func (ExecRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if len(inv.Args) == 0 {
		return nil, &SpawnError{Cause: os.ErrInvalid}
	}

	cmd := exec.Command(inv.Args[0], inv.Args[1:]...)
	cmd.Dir = inv.Dir
	cmd.Stdin = nil
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Cause: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Cause: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cause: err}
	}

	var stdout, stderr bytes.Buffer
	collected := make(chan struct{})
	go func() {
		collectOutput(stdoutPipe, stderrPipe, &stdout, &stderr)
		close(collected)
	}()

	// Wait only after both pipes hit EOF so cmd.Wait never races the drain.
	done := make(chan error, 1)
	go func() {
		<-collected
		done <- cmd.Wait()
	}()

	var expired <-chan time.Time
	if inv.Timeout > 0 && !inv.NoTimeout {
		timer := time.NewTimer(inv.Timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case err := <-done:
		if err != nil {
			return nil, &ExitError{
				Code:   exitCode(err),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		return &Result{
			Stdout: strings.TrimSpace(stdout.String()),
			Stderr: strings.TrimSpace(stderr.String()),
		}, nil

	case <-expired:
		_ = cmd.Process.Kill()
		<-done
		return nil, &TimeoutError{Limit: inv.Timeout}

	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return nil, ctx.Err()
	}
}

// collectOutput drains both pipes concurrently so a chatty engine cannot
// deadlock on a full pipe buffer.
func collectOutput(stdoutPipe, stderrPipe io.Reader, stdout, stderr *bytes.Buffer) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stdout, stdoutPipe)
	}()

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stderr, stderrPipe)
	}()

	wg.Wait()
}

// exitCode extracts the exit code from a cmd.Wait error.
func exitCode(err error) int {
	type exitCoder interface {
		ExitCode() int
	}
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}
