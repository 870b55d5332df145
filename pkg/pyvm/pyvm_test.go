package pyvm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
)

func stubPyvm(t *testing.T, body string) *Client {
	t.Helper()
	script := filepath.Join(t.TempDir(), "pyvm")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"+body), 0o755))
	return NewClientWithCommand(executor.NewLocalExecutor(), script)
}

func TestCurrentVersion(t *testing.T) {
	client := stubPyvm(t, `[ "$1" = "version-name" ] && echo "3.12.1"`)

	got, err := client.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3.12.1", got)
}

func TestPrefixNotInstalled(t *testing.T) {
	client := stubPyvm(t, `echo "pyvm: version not installed" >&2; exit 1`)

	_, err := client.Prefix(context.Background(), "9.9.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'9.9.9' is not installed")
}

func TestInstalledVersionsSorted(t *testing.T) {
	client := stubPyvm(t, `printf '3.12.1\nmyenv\n3.9.19\n2.7.18\nanother-env\n'`)

	got, err := client.InstalledVersions(context.Background())
	require.NoError(t, err)

	// Parseable versions in semver order, then the rest lexically
	assert.Equal(t, []string{"2.7.18", "3.9.19", "3.12.1", "another-env", "myenv"}, got)
}

func TestHookPaths(t *testing.T) {
	client := stubPyvm(t, `printf '/etc/pyvm.d/first.sh\n/etc/pyvm.d/second.sh\n'`)

	got := client.HookPaths(context.Background(), "virtualenv", "before")
	assert.Equal(t, []string{"/etc/pyvm.d/first.sh", "/etc/pyvm.d/second.sh"}, got)
}

func TestHookPathsDiscoveryFailure(t *testing.T) {
	client := stubPyvm(t, `exit 1`)

	assert.Nil(t, client.HookPaths(context.Background(), "virtualenv", "before"))
}

func TestRehash(t *testing.T) {
	ok := stubPyvm(t, `exit 0`)
	require.NoError(t, ok.Rehash(context.Background()))

	bad := stubPyvm(t, `exit 1`)
	require.Error(t, bad.Rehash(context.Background()))
}
