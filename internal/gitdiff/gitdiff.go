// Package gitdiff captures the textual diff between the working tree and a
// fixed reference by shelling out to git.
package gitdiff

import (
	"context"
	"fmt"

	"github.com/nahidhasan98/git-diff-server/internal/runner"
)

// DefaultRef is the reference the working tree is compared against.
const DefaultRef = "staging"

// Differ runs `git --no-pager diff <ref>`.
type Differ struct {
	runner  runner.Runner
	binary  string
	ref     string
	workDir string
}

// Option configures a Differ.
type Option func(*Differ)

// WithBinary sets the git executable.
func WithBinary(binary string) Option {
	return func(d *Differ) {
		d.binary = binary
	}
}

// WithRef sets the reference passed to git diff.
func WithRef(ref string) Option {
	return func(d *Differ) {
		d.ref = ref
	}
}

// WithWorkDir sets the directory git runs in. Empty means the process's
// working directory.
func WithWorkDir(dir string) Option {
	return func(d *Differ) {
		d.workDir = dir
	}
}

// New creates a Differ that executes git through r.
func New(r runner.Runner, opts ...Option) *Differ {
	d := &Differ{
		runner: r,
		binary: "git",
		ref:    DefaultRef,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Args returns the git arguments, excluding the binary.
func (d *Differ) Args() []string {
	return []string{"--no-pager", "diff", d.ref}
}

// Diff returns git's standard output exactly as produced, including the empty
// string when there is nothing to compare. A missing ref or a directory
// outside a repository surfaces as *runner.ExitError carrying git's stderr.
func (d *Differ) Diff(ctx context.Context) (string, error) {
	res, err := d.runner.Run(ctx, runner.Command{
		Name: d.binary,
		Args: d.Args(),
		Dir:  d.workDir,
	})
	if err != nil {
		return "", fmt.Errorf("git diff %s: %w", d.ref, err)
	}
	return res.Stdout, nil
}
