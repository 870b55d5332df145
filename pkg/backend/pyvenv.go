package backend

import (
	"context"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
)

// Pyvenv adapts the stdlib venv frontend. It rejects the quiet/verbose flags
// virtualenv understands, and handles upgrade natively via --upgrade.
type Pyvenv struct {
	exec    executor.Executor
	command string
}

// NewPyvenv creates the adapter around a resolved tool path
func NewPyvenv(exec executor.Executor, command string) *Pyvenv {
	return &Pyvenv{exec: exec, command: command}
}

func (p *Pyvenv) Name() string { return "pyvenv" }

// SupportsOption reports flag support. pyvenv has no quiet/verbose knobs and
// takes an upgrade flag directly.
func (p *Pyvenv) SupportsOption(flag string) bool {
	switch flag {
	case "quiet", "q", "verbose", "v":
		return false
	}
	return true
}

// Create runs pyvenv with the given options and target path
func (p *Pyvenv) Create(ctx context.Context, path string, options []string, run RunSpec) (int, error) {
	args := append(append([]string{}, options...), path)
	return p.exec.Run(ctx, run.command(p.command, args))
}
