package backend

import (
	"context"
	"io"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
)

// Backend is an environment-creation tool adapter. The pipeline decides which
// options to forward by querying SupportsOption instead of switching on the
// backend name.
type Backend interface {
	// Name returns the tool's command name
	Name() string

	// SupportsOption reports whether the tool accepts the given flag name
	// (without dashes). Unsupported flags are stripped or translated by the
	// caller before Create.
	SupportsOption(flag string) bool

	// Create invokes the tool to materialize an environment at path. The
	// returned status is the tool's exit code; err is reserved for failing
	// to start the tool at all.
	Create(ctx context.Context, path string, options []string, run RunSpec) (int, error)
}

// RunSpec carries the invocation context shared by both adapters: the working
// directory (the bootstrap cache, so downloaded artifacts are reused across
// invocations), the sanitized environment, and the caller's stdio.
type RunSpec struct {
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (r RunSpec) command(name string, args []string) executor.Command {
	return executor.Command{
		Name:   name,
		Args:   args,
		Dir:    r.Dir,
		Env:    r.Env,
		Stdin:  r.Stdin,
		Stdout: r.Stdout,
		Stderr: r.Stderr,
	}
}
