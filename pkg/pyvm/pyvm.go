package pyvm

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
)

// Client wraps the host version manager. Every method shells out to the pyvm
// binary; the manager's own path resolution, hook discovery and rehash
// machinery are consumed as opaque contracts.
type Client struct {
	exec    executor.Executor
	command string
}

// NewClient creates a client over the given executor
func NewClient(exec executor.Executor) *Client {
	return &Client{exec: exec, command: "pyvm"}
}

// NewClientWithCommand creates a client that invokes a specific binary,
// used by tests to point at a stub
func NewClientWithCommand(exec executor.Executor, command string) *Client {
	return &Client{exec: exec, command: command}
}

// CurrentVersion returns the currently active version name
func (c *Client) CurrentVersion(ctx context.Context) (string, error) {
	out, err := c.exec.Capture(ctx, c.command, "version-name")
	if err != nil {
		return "", fmt.Errorf("failed to query current version: %w", err)
	}
	return out, nil
}

// Prefix returns the installation prefix for a version. An error means the
// version is not installed; callers treat that as a hard precondition failure.
func (c *Client) Prefix(ctx context.Context, version string) (string, error) {
	out, err := c.exec.Capture(ctx, c.command, "prefix", version)
	if err != nil {
		return "", fmt.Errorf("version '%s' is not installed: %w", version, err)
	}
	return out, nil
}

// InstalledVersions lists installed version names, newest-style ordering:
// parseable versions sort in semver order, everything else sorts after them
// lexically. Used by the shell-completion mode.
func (c *Client) InstalledVersions(ctx context.Context) ([]string, error) {
	out, err := c.exec.Capture(ctx, c.command, "versions", "--bare")
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	var versions []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			versions = append(versions, line)
		}
	}

	sort.SliceStable(versions, func(i, j int) bool {
		vi, vj := "v"+versions[i], "v"+versions[j]
		iOK, jOK := semver.IsValid(vi), semver.IsValid(vj)
		switch {
		case iOK && jOK:
			return semver.Compare(vi, vj) < 0
		case iOK != jOK:
			return iOK
		default:
			return versions[i] < versions[j]
		}
	})

	return versions, nil
}

// HookPaths returns the ordered hook scripts contributed by other plugins for
// the given command and point ("before" or "after"). A failing or empty
// discovery call simply yields no hooks.
func (c *Client) HookPaths(ctx context.Context, command, point string) []string {
	out, err := c.exec.Capture(ctx, c.command, "hooks", command, point)
	if err != nil {
		return nil
	}

	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, filepath.Clean(line))
		}
	}
	return paths
}

// Rehash rebuilds the version manager's command shims
func (c *Client) Rehash(ctx context.Context) error {
	if _, err := c.exec.Capture(ctx, c.command, "rehash"); err != nil {
		return fmt.Errorf("rehash failed: %w", err)
	}
	return nil
}
