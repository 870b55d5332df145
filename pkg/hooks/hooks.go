package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/pyvm/pyvm-virtualenv/pkg/logger"
)

// List holds the two ordered hook sequences collected from the plugin
// discovery collaborator. Ownership ends with the invocation.
type List struct {
	Before []string
	After  []string
}

// Runner evaluates hook fragments in-process with one shared interpreter, so
// a variable exported by an early hook is visible to later hooks and to the
// backend invocation. Hooks are trusted by convention, not sandboxed; this is
// the plugin extension point.
type Runner struct {
	base   []string
	parser *syntax.Parser
	runner *interp.Runner
}

// NewRunner creates a hook runner seeded with the given environment
func NewRunner(dir string, environ []string, stdout, stderr io.Writer) (*Runner, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hook interpreter: %w", err)
	}

	return &Runner{
		base:   environ,
		parser: syntax.NewParser(),
		runner: runner,
	}, nil
}

// RunAll evaluates each hook script in sequence. The first failing script
// stops the sequence and returns its error.
func (r *Runner) RunAll(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := r.run(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, path string) error {
	logger.Debug("hook: %s", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read hook %s: %w", path, err)
	}

	prog, err := r.parser.Parse(strings.NewReader(string(src)), path)
	if err != nil {
		return fmt.Errorf("failed to parse hook %s: %w", path, err)
	}

	if err := r.runner.Run(ctx, prog); err != nil {
		return fmt.Errorf("hook %s failed: %w", path, err)
	}
	return nil
}

// Environ returns the base environment overlaid with every variable the hooks
// exported, for use by later pipeline stages
func (r *Runner) Environ() []string {
	merged := make(map[string]string, len(r.base))
	var order []string
	for _, kv := range r.base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			if _, seen := merged[k]; !seen {
				order = append(order, k)
			}
			merged[k] = v
		}
	}

	var added []string
	for name, vr := range r.runner.Vars {
		if !vr.Exported {
			continue
		}
		if _, seen := merged[name]; !seen {
			added = append(added, name)
		}
		merged[name] = vr.String()
	}
	sort.Strings(added)
	order = append(order, added...)

	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, k+"="+merged[k])
	}
	return out
}
