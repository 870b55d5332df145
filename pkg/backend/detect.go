package backend

import (
	"path/filepath"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
	"github.com/pyvm/pyvm-virtualenv/pkg/logger"
)

// Detector probes for the two backend tools. Probing prefers the source
// version's own bin directory so an interpreter-local install wins over
// whatever happens to be on PATH.
type Detector struct {
	exec   executor.Executor
	prefix string // source version installation prefix
}

// NewDetector creates a detector scoped to a version prefix
func NewDetector(exec executor.Executor, prefix string) *Detector {
	return &Detector{exec: exec, prefix: prefix}
}

// Locate resolves a tool name to an invocable path, or "" when absent
func (d *Detector) Locate(name string) string {
	if d.prefix != "" {
		candidate := filepath.Join(d.prefix, "bin", name)
		if ok, err := d.exec.FileExists(candidate); err == nil && ok {
			return candidate
		}
	}

	path, err := d.exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}

// HasVirtualenv reports whether the virtualenv tool can be located
func (d *Detector) HasVirtualenv() bool {
	return d.Locate("virtualenv") != ""
}

// Detect selects the active backend. pyvenv is chosen only when it is present
// and virtualenv is absent; in every other case virtualenv is selected, even
// when neither tool is present (the installer then provides it). Detection is
// re-run after any install step since installing virtualenv changes the
// outcome.
func (d *Detector) Detect() Backend {
	virtualenvPath := d.Locate("virtualenv")
	pyvenvPath := d.Locate("pyvenv")

	if pyvenvPath != "" && virtualenvPath == "" {
		logger.Debug("backend: pyvenv at %s", pyvenvPath)
		return NewPyvenv(d.exec, pyvenvPath)
	}

	if virtualenvPath == "" {
		// Not installed yet; the installer will put it on the prefix's bin
		virtualenvPath = "virtualenv"
	}
	logger.Debug("backend: virtualenv at %s", virtualenvPath)
	return NewVirtualenv(d.exec, virtualenvPath)
}
