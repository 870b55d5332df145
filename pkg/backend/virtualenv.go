package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
	"github.com/pyvm/pyvm-virtualenv/pkg/logger"
)

// Releases older than this predate the bundled wheel cache and are known to
// misbehave with the cache-directory working tree.
const minVirtualenvVersion = "1.11"

// Virtualenv adapts the third-party virtualenv tool. Unknown options are
// forwarded verbatim; virtualenv owns their validation.
type Virtualenv struct {
	exec    executor.Executor
	command string // resolved tool path
}

// NewVirtualenv creates the adapter around a resolved tool path
func NewVirtualenv(exec executor.Executor, command string) *Virtualenv {
	return &Virtualenv{exec: exec, command: command}
}

func (v *Virtualenv) Name() string { return "virtualenv" }

// SupportsOption reports flag support. Everything passes through except
// upgrade, which is handled by the package-list migrator instead.
func (v *Virtualenv) SupportsOption(flag string) bool {
	switch flag {
	case "upgrade", "u":
		return false
	}
	return true
}

// Create runs virtualenv with the given options and target path
func (v *Virtualenv) Create(ctx context.Context, path string, options []string, run RunSpec) (int, error) {
	args := append(append([]string{}, options...), path)
	return v.exec.Run(ctx, run.command(v.command, args))
}

// Version parses `virtualenv --version` output. Formats seen in the wild:
// "20.25.0" and "virtualenv 20.25.0 from /.../virtualenv/__init__.py".
func (v *Virtualenv) Version(ctx context.Context) (*version.Version, error) {
	out, err := v.exec.Capture(ctx, v.command, "--version")
	if err != nil {
		return nil, fmt.Errorf("failed to query virtualenv version: %w", err)
	}

	fields := strings.Fields(out)
	raw := ""
	for _, f := range fields {
		if f != "" && f[0] >= '0' && f[0] <= '9' {
			raw = f
			break
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("unrecognized virtualenv version output: %q", out)
	}

	parsed, err := version.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("unrecognized virtualenv version %q: %w", raw, err)
	}
	return parsed, nil
}

// CheckMinimumVersion warns when the installed virtualenv predates the
// minimum supported release. Never fatal: old releases mostly work, the pin
// variable exists for users who need to move off one.
func (v *Virtualenv) CheckMinimumVersion(ctx context.Context) {
	installed, err := v.Version(ctx)
	if err != nil {
		logger.Debug("virtualenv version check skipped: %v", err)
		return
	}

	minimum := version.Must(version.NewVersion(minVirtualenvVersion))
	if installed.LessThan(minimum) {
		logger.Warn("virtualenv %s is older than the minimum supported release %s; consider upgrading",
			installed, minimum)
	}
}
