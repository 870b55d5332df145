package venv

import (
	"os"
	"strings"

	"github.com/pyvm/pyvm-virtualenv/pkg/backend"
	"github.com/pyvm/pyvm-virtualenv/pkg/config"
	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
	"github.com/pyvm/pyvm-virtualenv/pkg/logger"
	"github.com/pyvm/pyvm-virtualenv/pkg/migrate"
	"github.com/pyvm/pyvm-virtualenv/pkg/options"
)

// Version is the plugin version reported by --version
const Version = "1.0.0"

// RunContext threads the state of one invocation through the pipeline stages:
// parsed options, the resolved source version and target, the chosen backend,
// and the captured backend exit status. One value per run, no ambient state.
type RunContext struct {
	Options *options.ParsedOptions
	Python  string // value of -p, forwarded as --python=

	SourceVersion string
	Prefix        string // source version installation prefix
	Name          string
	Path          string

	Force   bool
	Upgrade bool
	Quiet   bool
	Verbose bool

	Backend     backend.Backend
	PassThrough []string // options forwarded to the backend, in order

	PreExisted bool
	Snapshot   *migrate.Snapshot
	Environ    []string // sanitized env, mutated by before-hooks

	Status int // backend / replay exit status
}

// sanitizedEnviron strips the variables that must not leak into the backend
// (isolation toggles and any pre-set version pin) and adds the hook-facing
// context variables.
func (rc *RunContext) sanitizedEnviron() []string {
	leaked := make(map[string]bool)
	for _, name := range config.LeakedEnvVars() {
		leaked[name] = true
	}

	var env []string
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && leaked[name] {
			continue
		}
		env = append(env, kv)
	}

	env = append(env,
		"PYVM_VIRTUALENV_NAME="+rc.Name,
		"PYVM_VIRTUALENV_PATH="+rc.Path,
		"PYVM_VIRTUALENV_SOURCE_VERSION="+rc.SourceVersion,
	)
	return env
}

// creationGuard removes a partially created environment on any failure path,
// graceful or interrupted. Acquired before the backend runs, released only on
// success. A pre-existing environment is never removed.
type creationGuard struct {
	exec       executor.Executor
	path       string
	preExisted bool
	released   bool
}

func acquireGuard(exec executor.Executor, path string, preExisted bool) *creationGuard {
	return &creationGuard{exec: exec, path: path, preExisted: preExisted}
}

// Release marks the creation as successful; cleanup becomes a no-op
func (g *creationGuard) Release() {
	g.released = true
}

// Cleanup removes the target directory unless the creation succeeded or the
// directory existed before this invocation
func (g *creationGuard) Cleanup() {
	if g.released || g.preExisted {
		return
	}
	logger.Info("removing %s", g.path)
	if err := g.exec.RemoveDirectory(g.path); err != nil {
		logger.Warn("failed to remove %s: %v", g.path, err)
	}
}
