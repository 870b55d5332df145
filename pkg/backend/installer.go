package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-version"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
	"github.com/pyvm/pyvm-virtualenv/pkg/logger"
)

// Installer installs the virtualenv tool into a version's package set via
// pip. Invoked only when virtualenv is absent and pyvenv was not selected.
type Installer struct {
	exec   executor.Executor
	prefix string // target version installation prefix
	pin    string // optional pinned virtualenv version
}

// NewInstaller creates an installer scoped to a version prefix
func NewInstaller(exec executor.Executor, prefix, pin string) *Installer {
	return &Installer{exec: exec, prefix: prefix, pin: pin}
}

// Install runs pip for the target interpreter. A non-zero pip exit is fatal
// to the whole invocation; nothing was created yet, so there is no state to
// roll back.
func (i *Installer) Install(ctx context.Context, quiet, verbose bool) error {
	requirement := "virtualenv"
	if i.pin != "" {
		if _, err := version.NewVersion(i.pin); err != nil {
			return fmt.Errorf("invalid virtualenv version pin %q: %w", i.pin, err)
		}
		requirement = fmt.Sprintf("virtualenv==%s", i.pin)
	}

	python := filepath.Join(i.prefix, "bin", "python")
	args := []string{"-s", "-m", "pip", "install"}
	if quiet {
		args = append(args, "-q")
	}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, requirement)

	logger.Info("installing %s for %s", requirement, python)
	status, err := i.exec.Run(ctx, executor.Command{
		Name:   python,
		Args:   args,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to run pip: %w", err)
	}
	if status != 0 {
		return fmt.Errorf("pip install %s exited with status %d", requirement, status)
	}

	return nil
}
