package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
)

// fakeEnv builds an environment directory with a pip stub whose freeze output
// and install exit status the test controls.
func fakeEnv(t *testing.T, root, name, pipBody string) string {
	t.Helper()
	env := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(env, "bin"), 0o755))
	pip := filepath.Join(env, "bin", "pip")
	require.NoError(t, os.WriteFile(pip, []byte("#!/bin/sh\n"+pipBody+"\n"), 0o755))
	return env
}

func TestSnapshotWritesManifestAndRenamesEnvironment(t *testing.T) {
	root := t.TempDir()
	env := fakeEnv(t, root, "3.12.1/envs/web", `echo "requests==2.31.0"
echo "flask==3.0.2"`)

	cache := filepath.Join(root, "cache")
	m := NewMigrator(executor.NewLocalExecutor(), cache)

	snap, err := m.Snapshot(context.Background(), env)
	require.NoError(t, err)

	contents, err := os.ReadFile(snap.Manifest)
	require.NoError(t, err)
	assert.Equal(t, "requests==2.31.0\nflask==3.0.2\n", string(contents))
	assert.Equal(t, filepath.Dir(snap.Manifest), cache)

	_, err = os.Stat(env)
	assert.True(t, os.IsNotExist(err), "original path should be vacated")
	assert.DirExists(t, snap.OldPath)
	assert.Equal(t, env+".upgrade."+snap.Seed, snap.OldPath)
}

func TestSnapshotFailsWhenFreezeFails(t *testing.T) {
	root := t.TempDir()
	env := fakeEnv(t, root, "broken", "exit 1")

	m := NewMigrator(executor.NewLocalExecutor(), filepath.Join(root, "cache"))

	_, err := m.Snapshot(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to snapshot packages")
	assert.DirExists(t, env, "environment must not be renamed when the snapshot fails")
}

func TestReplaySuccessRemovesArtifacts(t *testing.T) {
	root := t.TempDir()
	old := fakeEnv(t, root, "web", "exit 0")
	fresh := fakeEnv(t, root, "fresh", "exit 0")

	manifest := filepath.Join(root, "requirements.test.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("requests==2.31.0\n"), 0o644))
	snap := &Snapshot{Seed: "test", Manifest: manifest, OldPath: old}

	m := NewMigrator(executor.NewLocalExecutor(), root)
	status, err := m.Replay(context.Background(), fresh, snap)
	require.NoError(t, err)
	assert.Equal(t, 0, status)

	_, err = os.Stat(manifest)
	assert.True(t, os.IsNotExist(err), "manifest should be removed on success")
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "old environment should be removed on success")
}

func TestReplayFailurePreservesArtifacts(t *testing.T) {
	root := t.TempDir()
	old := fakeEnv(t, root, "web", "exit 0")
	fresh := fakeEnv(t, root, "fresh", "exit 4")

	manifest := filepath.Join(root, "requirements.test.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("requests==2.31.0\n"), 0o644))
	snap := &Snapshot{Seed: "test", Manifest: manifest, OldPath: old}

	m := NewMigrator(executor.NewLocalExecutor(), root)
	status, err := m.Replay(context.Background(), fresh, snap)
	require.NoError(t, err)
	assert.Equal(t, 4, status)

	assert.FileExists(t, manifest, "manifest must survive a failed replay")
	assert.DirExists(t, old, "old environment must survive a failed replay")
}
