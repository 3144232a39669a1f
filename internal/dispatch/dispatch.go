// Package dispatch turns a model name into a commit message.
//
// A [Dispatcher] captures the git diff, writes it to a file in a private
// temporary directory, runs the model's script with the file's path in the
// environment and takes the last line of the script's output as the message.
// The temporary directory is removed before Generate returns, whatever the
// outcome.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nahidhasan98/git-diff-server/internal/logger"
	"github.com/nahidhasan98/git-diff-server/internal/runner"
)

const (
	// DiffFileName is the name of the file handed to scripts.
	DiffFileName = "diff.txt"

	// DefaultDiffEnvVar carries the diff file path to scripts.
	DefaultDiffEnvVar = "DIFF_FILE"
)

// ErrTimeout is returned when a subprocess outlives the configured timeout.
var ErrTimeout = errors.New("script timed out")

// DiffSource produces the diff text for a request.
type DiffSource interface {
	Diff(ctx context.Context) (string, error)
}

// Result is the outcome of a successful dispatch.
type Result struct {
	Model   string
	Diff    string
	Message string
}

// Dispatcher runs the per-model scripts.
type Dispatcher struct {
	catalog    *Catalog
	diffs      DiffSource
	runner     runner.Runner
	log        *logger.Logger
	diffEnvVar string
	timeout    time.Duration
	tempRoot   string
	environ    func() []string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDiffEnvVar overrides the variable name that carries the diff path.
func WithDiffEnvVar(name string) Option {
	return func(d *Dispatcher) {
		d.diffEnvVar = name
	}
}

// WithTimeout bounds each subprocess. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithTempRoot sets the parent of the per-request temporary directories.
// Empty means os.TempDir.
func WithTempRoot(dir string) Option {
	return func(d *Dispatcher) {
		d.tempRoot = dir
	}
}

// WithEnviron replaces os.Environ as the base environment for scripts.
func WithEnviron(environ func() []string) Option {
	return func(d *Dispatcher) {
		d.environ = environ
	}
}

// New creates a Dispatcher.
func New(catalog *Catalog, diffs DiffSource, r runner.Runner, log *logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		catalog:    catalog,
		diffs:      diffs,
		runner:     r,
		log:        log,
		diffEnvVar: DefaultDiffEnvVar,
		environ:    os.Environ,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Models returns the recognized model keys.
func (d *Dispatcher) Models() []string {
	return d.catalog.Models()
}

// Generate produces a commit message for the current diff using model.
//
// Errors: ErrUnknownModel before anything runs; *runner.ExitError in the
// chain when git or the script exits non-zero; ErrTimeout when the timeout
// fires; anything else is an I/O or launch failure.
func (d *Dispatcher) Generate(ctx context.Context, model string) (*Result, error) {
	script, err := d.catalog.Script(model)
	if err != nil {
		return nil, err
	}

	log := d.log.With("model", model)
	start := time.Now()

	diff, err := d.diff(ctx)
	if err != nil {
		return nil, err
	}
	log.Debugf("Captured diff (%d bytes)", len(diff))

	message, err := d.runScript(ctx, log, script, diff)
	if err != nil {
		return nil, err
	}

	log.With("duration", time.Since(start).String()).Infof("Generated commit message with %s", filepath.Base(script))

	return &Result{
		Model:   model,
		Diff:    diff,
		Message: message,
	}, nil
}

func (d *Dispatcher) diff(ctx context.Context) (string, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	diff, err := d.diffs.Diff(ctx)
	if err != nil {
		return "", d.timeoutError(ctx, err)
	}
	return diff, nil
}

// runScript owns the temporary directory for the lifetime of one script run.
func (d *Dispatcher) runScript(ctx context.Context, log *logger.Logger, script, diff string) (string, error) {
	tmpDir, err := os.MkdirTemp(d.tempRoot, "git-diff-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			log.Error("Failed to remove temp dir", err)
		}
	}()

	diffPath, err := filepath.Abs(filepath.Join(tmpDir, DiffFileName))
	if err != nil {
		return "", fmt.Errorf("resolve diff path: %w", err)
	}
	if err := os.WriteFile(diffPath, []byte(diff), 0o600); err != nil {
		return "", fmt.Errorf("write diff file: %w", err)
	}

	env := append(d.environ(), d.diffEnvVar+"="+diffPath)

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	log.Debugf("Running %s", script)
	res, err := d.runner.Run(ctx, runner.Command{Name: script, Env: env})
	if err != nil {
		return "", d.timeoutError(ctx, err)
	}
	log.With("script_duration", res.Duration.String()).Debugf("%s finished", filepath.Base(script))

	return LastLine(res.Stdout), nil
}

func (d *Dispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.timeout)
}

func (d *Dispatcher) timeoutError(ctx context.Context, err error) error {
	if d.timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, d.timeout)
	}
	return err
}

// LastLine returns the final line of output once surrounding whitespace is
// trimmed, or "" for empty output.
func LastLine(output string) string {
	trimmed := strings.TrimSpace(output)
	if i := strings.LastIndex(trimmed, "\n"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
