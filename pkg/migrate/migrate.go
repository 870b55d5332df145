package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
	"github.com/pyvm/pyvm-virtualenv/pkg/logger"
)

// Snapshot is the transient state of one upgrade-in-place: a package manifest
// and the renamed copy of the old environment. Both are seed-named to avoid
// collisions across concurrent runs, deleted on success, and deliberately left
// in place on failure for manual recovery.
type Snapshot struct {
	Seed     string
	Manifest string
	OldPath  string
}

// Migrator snapshots an environment's installed packages before an in-place
// upgrade and replays them into the freshly created environment.
type Migrator struct {
	exec     executor.Executor
	cacheDir string
}

// NewMigrator creates a migrator; manifests are written under cacheDir
func NewMigrator(exec executor.Executor, cacheDir string) *Migrator {
	return &Migrator{exec: exec, cacheDir: cacheDir}
}

func newSeed() string {
	return fmt.Sprintf("%s.%d", time.Now().Format("20060102150405"), os.Getpid())
}

// Snapshot dumps the environment's package list to a manifest file, then
// renames the environment directory aside so the creation step can build a
// fresh one at the original path.
func (m *Migrator) Snapshot(ctx context.Context, envPath string) (*Snapshot, error) {
	seed := newSeed()

	pip := filepath.Join(envPath, "bin", "pip")
	frozen, err := m.exec.Capture(ctx, pip, "freeze")
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot packages: %w", err)
	}

	if err := m.exec.CreateDirectory(m.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	manifest := filepath.Join(m.cacheDir, fmt.Sprintf("requirements.%s.txt", seed))
	if err := os.WriteFile(manifest, []byte(frozen+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	oldPath := fmt.Sprintf("%s.upgrade.%s", envPath, seed)
	if err := m.exec.Rename(envPath, oldPath); err != nil {
		return nil, fmt.Errorf("failed to set aside old environment: %w", err)
	}

	logger.Debug("snapshot: manifest %s, old environment %s", manifest, oldPath)
	return &Snapshot{Seed: seed, Manifest: manifest, OldPath: oldPath}, nil
}

// Replay reinstalls every manifest entry into the new environment at envPath.
// On success the manifest and the renamed old directory are removed. On
// failure both are preserved and a recovery message is printed; automatic
// rollback could silently discard data in the old directory.
func (m *Migrator) Replay(ctx context.Context, envPath string, snap *Snapshot) (int, error) {
	pip := filepath.Join(envPath, "bin", "pip")
	status, err := m.exec.Run(ctx, executor.Command{
		Name:   pip,
		Args:   []string{"install", "-r", snap.Manifest},
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		return -1, fmt.Errorf("failed to run pip: %w", err)
	}

	if status != 0 {
		logger.Error("upgrade failed: could not restore packages into %s", envPath)
		logger.Error("manifest preserved at %s, old environment preserved at %s", snap.Manifest, snap.OldPath)
		if contents, readErr := os.ReadFile(snap.Manifest); readErr == nil {
			fmt.Fprintf(os.Stderr, "packages to restore:\n%s", contents)
		}
		return status, nil
	}

	if err := os.Remove(snap.Manifest); err != nil {
		logger.Warn("failed to remove manifest %s: %v", snap.Manifest, err)
	}
	if err := m.exec.RemoveDirectory(snap.OldPath); err != nil {
		logger.Warn("failed to remove old environment %s: %v", snap.OldPath, err)
	}

	return 0, nil
}
