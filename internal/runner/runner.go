// Package runner executes external processes and captures their output.
//
// [ExecRunner] is the production implementation. [MockRunner] records calls
// and returns canned output so callers can be tested without spawning
// anything.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Command describes a single process invocation.
type Command struct {
	Name string   // Executable path or name looked up in PATH
	Args []string // Arguments, excluding Name
	Dir  string   // Working directory; empty means the caller's
	Env  []string // Full environment; nil means inherit
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner runs a command to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError reports a process that ran but exited with a non-zero status.
type ExitError struct {
	Name     string
	ExitCode int
	Stderr   string // Captured standard error, unmodified
	Err      error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Name, e.ExitCode)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// waitDelay bounds how long Run waits for output pipes after the process is
// killed; a grandchild holding stdout open would otherwise block forever.
const waitDelay = 2 * time.Second

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts the command, waits for it and returns both output streams.
// A non-zero exit yields *ExitError; cancellation yields the context error.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%s: %w", c.Name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, &ExitError{
				Name:     c.Name,
				ExitCode: exitErr.ExitCode(),
				Stderr:   result.Stderr,
				Err:      err,
			}
		}
		return result, err
	}

	return result, nil
}
