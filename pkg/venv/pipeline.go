package venv

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/pyvm/pyvm-virtualenv/pkg/backend"
	"github.com/pyvm/pyvm-virtualenv/pkg/config"
	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
	"github.com/pyvm/pyvm-virtualenv/pkg/hooks"
	"github.com/pyvm/pyvm-virtualenv/pkg/logger"
	"github.com/pyvm/pyvm-virtualenv/pkg/meta"
	"github.com/pyvm/pyvm-virtualenv/pkg/migrate"
	"github.com/pyvm/pyvm-virtualenv/pkg/options"
	"github.com/pyvm/pyvm-virtualenv/pkg/pyvm"
)

const usage = `Usage: pyvm virtualenv [-f|--force] [-u|--upgrade] [VIRTUALENV_OPTIONS] [<version>] <virtualenv-name>
       pyvm virtualenv --version
       pyvm virtualenv --help

  -f, --force     Overwrite an existing environment without confirmation
  -u, --upgrade   Recreate the environment and migrate its package list
  -q, --quiet     Pass quiet mode to the backend tool
  -v, --verbose   Pass verbose mode to the backend tool
  -p <python>     Interpreter to use (forwarded as --python=<python>)

Any other option is forwarded verbatim to the backend tool.
`

// Warn below ~100MB free; virtualenv bootstraps fail confusingly on full disks
const diskSpaceWarnBytes = 100 * 1024 * 1024

// Pipeline orchestrates one environment creation: detect backend, confirm,
// run hooks, invoke the tool, migrate packages on upgrade, then rehash or
// clean up. Stages mutate a single RunContext.
type Pipeline struct {
	cfg    *config.Config
	exec   executor.Executor
	client *pyvm.Client

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewPipeline creates a pipeline wired to the process stdio
func NewPipeline(cfg *config.Config, exec executor.Executor, client *pyvm.Client) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		exec:   exec,
		client: client,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the whole pipeline for the given raw arguments and returns the
// process exit status.
func (p *Pipeline) Run(ctx context.Context, args []string) int {
	rc := &RunContext{}

	rc.Python, args = options.ExtractPython(args)
	rc.Options = options.Parse(args)

	if rc.Options.Has("h", "help") {
		fmt.Fprint(p.Stdout, usage)
		return 0
	}
	if rc.Options.Has("version") {
		fmt.Fprintf(p.Stdout, "pyvm-virtualenv %s\n", Version)
		return 0
	}

	if err := p.stageInit(ctx, rc); err != nil {
		fmt.Fprintln(p.Stderr, "pyvm-virtualenv:", err)
		fmt.Fprint(p.Stderr, usage)
		return 1
	}

	if err := p.stageResolveVersion(ctx, rc); err != nil {
		fmt.Fprintln(p.Stderr, "pyvm-virtualenv:", err)
		fmt.Fprint(p.Stderr, usage)
		return 1
	}

	if err := p.stageBackendReady(ctx, rc); err != nil {
		fmt.Fprintln(p.Stderr, "pyvm-virtualenv:", err)
		return 1
	}

	confirmed, err := p.stageConfirm(ctx, rc)
	if err != nil {
		fmt.Fprintln(p.Stderr, "pyvm-virtualenv:", err)
		return 1
	}
	if !confirmed {
		return 1
	}

	return p.stageInvoke(ctx, rc)
}

// stageInit validates positionals and derives the environment name. With one
// positional the source version defaults to the currently active version;
// with two or more, the first is the source version and the last, stripped of
// any path prefix, is the name.
func (p *Pipeline) stageInit(ctx context.Context, rc *RunContext) error {
	positionals := rc.Options.Positionals
	if len(positionals) == 0 {
		return fmt.Errorf("no virtualenv name given")
	}

	if len(positionals) == 1 {
		current, err := p.client.CurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve current version: %w", err)
		}
		rc.SourceVersion = current
	} else {
		rc.SourceVersion = positionals[0]
	}

	rc.Name = filepath.Base(positionals[len(positionals)-1])
	if rc.Name == "" || rc.Name == "." || rc.Name == string(filepath.Separator) {
		return fmt.Errorf("invalid virtualenv name %q", positionals[len(positionals)-1])
	}
	rc.Path = p.cfg.EnvironmentPath(rc.Name)

	rc.Force = rc.Options.Has("f", "force")
	rc.Upgrade = rc.Options.Has("u", "upgrade")
	rc.Quiet = rc.Options.Has("q", "quiet")
	rc.Verbose = rc.Options.Has("v", "verbose")

	return nil
}

// stageResolveVersion asserts the source version is actually installed. No
// environment creation is attempted for a non-existent base interpreter.
func (p *Pipeline) stageResolveVersion(ctx context.Context, rc *RunContext) error {
	prefix, err := p.client.Prefix(ctx, rc.SourceVersion)
	if err != nil {
		return err
	}
	rc.Prefix = prefix
	logger.Debug("source version %s at %s", rc.SourceVersion, prefix)
	return nil
}

// stageBackendReady selects the backend, installs virtualenv when it is
// missing, and builds the pass-through option list with capability queries.
func (p *Pipeline) stageBackendReady(ctx context.Context, rc *RunContext) error {
	detector := backend.NewDetector(p.exec, rc.Prefix)
	chosen := detector.Detect()

	if chosen.Name() == "virtualenv" && !detector.HasVirtualenv() {
		installer := backend.NewInstaller(p.exec, rc.Prefix, p.cfg.BackendPin)
		if err := installer.Install(ctx, rc.Quiet, rc.Verbose); err != nil {
			return err
		}
		// Installing virtualenv changes the detection outcome
		chosen = detector.Detect()
	}
	rc.Backend = chosen

	if v, ok := chosen.(*backend.Virtualenv); ok {
		v.CheckMinimumVersion(ctx)
	}

	// Consumed by the pipeline, never forwarded
	forwarded := rc.Options.Remove("f", "force", "u", "upgrade", "h", "help", "version")

	var dropped []string
	kept := &options.ParsedOptions{}
	for _, flag := range forwarded.Flags {
		name, _, _ := strings.Cut(flag, "=")
		if chosen.SupportsOption(name) {
			kept.Flags = append(kept.Flags, flag)
		} else {
			dropped = append(dropped, flag)
		}
	}
	if len(dropped) > 0 {
		logger.Debug("%s does not support: %s", chosen.Name(), strings.Join(dropped, ", "))
	}

	rc.PassThrough = kept.Args()
	if rc.Python != "" && chosen.SupportsOption("python") {
		rc.PassThrough = append(rc.PassThrough, "--python="+rc.Python)
	}
	if rc.Upgrade && chosen.SupportsOption("upgrade") {
		rc.PassThrough = append(rc.PassThrough, "--upgrade")
	}

	return nil
}

// stageConfirm records pre-existence, prompts before overwriting a populated
// environment, and snapshots packages when an upgrade targets an existing
// environment. Returns false when the user declines; nothing was mutated yet.
func (p *Pipeline) stageConfirm(ctx context.Context, rc *RunContext) (bool, error) {
	exists, err := p.exec.FileExists(rc.Path)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", rc.Path, err)
	}
	rc.PreExisted = exists

	populated := false
	if exists {
		populated, err = p.exec.FileExists(filepath.Join(rc.Path, "bin"))
		if err != nil {
			return false, fmt.Errorf("failed to inspect %s: %w", rc.Path, err)
		}
	}

	if populated && !rc.Force {
		color.New(color.FgYellow).Fprintf(p.Stderr, "pyvm-virtualenv: %s already exists\n", rc.Path)
		fmt.Fprint(p.Stderr, "continue with virtualenv creation? (y/N) ")

		line, err := bufio.NewReader(p.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return false, nil
		}
		answer := strings.TrimSpace(line)
		if answer == "" || (answer[0] != 'y' && answer[0] != 'Y') {
			return false, nil
		}
	}

	// A pyvenv upgrade is handled natively via --upgrade; only the
	// virtualenv path needs the migrator.
	if rc.Upgrade && exists && !rc.Backend.SupportsOption("upgrade") {
		migrator := migrate.NewMigrator(p.exec, p.cfg.CacheDir)
		snap, err := migrator.Snapshot(ctx, rc.Path)
		if err != nil {
			return false, err
		}
		rc.Snapshot = snap
	}

	return true, nil
}

// stageInvoke runs hooks, the backend tool, and the optional migration, then
// rehashes on success or cleans up a newly created directory on failure.
func (p *Pipeline) stageInvoke(ctx context.Context, rc *RunContext) int {
	p.checkDiskSpace()

	if err := p.exec.CreateDirectory(p.cfg.CacheDir, 0o755); err != nil {
		logger.Warn("failed to create cache directory %s: %v", p.cfg.CacheDir, err)
	}

	guard := acquireGuard(p.exec, rc.Path, rc.PreExisted)
	defer guard.Cleanup()

	rc.Environ = rc.sanitizedEnviron()
	hookRunner, err := hooks.NewRunner(p.cfg.CacheDir, rc.Environ, p.Stdout, p.Stderr)
	if err != nil {
		fmt.Fprintln(p.Stderr, "pyvm-virtualenv:", err)
		return 1
	}

	before := p.client.HookPaths(ctx, "virtualenv", "before")
	if err := hookRunner.RunAll(ctx, before); err != nil {
		fmt.Fprintln(p.Stderr, "pyvm-virtualenv:", err)
		return 1
	}
	rc.Environ = hookRunner.Environ()

	status, err := rc.Backend.Create(ctx, rc.Path, rc.PassThrough, backend.RunSpec{
		Dir:    p.cfg.CacheDir,
		Env:    rc.Environ,
		Stdin:  p.Stdin,
		Stdout: p.Stdout,
		Stderr: p.Stderr,
	})
	if err != nil {
		fmt.Fprintln(p.Stderr, "pyvm-virtualenv:", err)
		status = 1
	}
	rc.Status = status

	// The backend's status does not abort the pipeline here: migration
	// reporting and after-hooks still run, and cleanup depends on it.
	if rc.Snapshot != nil {
		p.runMigration(ctx, rc)
	}

	after := p.client.HookPaths(ctx, "virtualenv", "after")
	if err := hookRunner.RunAll(ctx, after); err != nil {
		logger.Warn("after hook failed: %v", err)
	}

	if rc.Status != 0 {
		if rc.Status < 0 {
			rc.Status = 1
		}
		return rc.Status
	}

	guard.Release()
	p.writeMetadata(rc)

	if err := p.client.Rehash(ctx); err != nil {
		logger.Warn("%v", err)
	}

	return 0
}

func (p *Pipeline) runMigration(ctx context.Context, rc *RunContext) {
	migrator := migrate.NewMigrator(p.exec, p.cfg.CacheDir)

	if rc.Status != 0 {
		logger.Error("upgrade failed: environment creation exited with status %d", rc.Status)
		logger.Error("manifest preserved at %s, old environment preserved at %s",
			rc.Snapshot.Manifest, rc.Snapshot.OldPath)
		return
	}

	status, err := migrator.Replay(ctx, rc.Path, rc.Snapshot)
	if err != nil {
		fmt.Fprintln(p.Stderr, "pyvm-virtualenv:", err)
		rc.Status = 1
		return
	}
	if status != 0 {
		rc.Status = status
	}
}

func (p *Pipeline) writeMetadata(rc *RunContext) {
	mgr := meta.NewManager(p.cfg.VersionsDir())
	record := &meta.EnvironmentMetadata{
		Name:          rc.Name,
		SourceVersion: rc.SourceVersion,
		Backend:       rc.Backend.Name(),
		PluginVersion: Version,
		CreatedAt:     time.Now().UTC(),
		Upgraded:      rc.Snapshot != nil,
	}
	if err := mgr.Save(record); err != nil {
		logger.Debug("failed to write metadata: %v", err)
	}
}

func (p *Pipeline) checkDiskSpace() {
	available, err := p.exec.DiskSpace(p.cfg.VersionsDir())
	if err != nil {
		logger.Debug("disk space check skipped: %v", err)
		return
	}
	if available < diskSpaceWarnBytes {
		logger.Warn("low disk space: %d MB available under %s",
			available/(1024*1024), p.cfg.VersionsDir())
	}
}
