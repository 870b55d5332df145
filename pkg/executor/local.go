package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/pyvm/pyvm-virtualenv/pkg/logger"
)

// LocalExecutor implements Executor against the local system
type LocalExecutor struct{}

// NewLocalExecutor creates a new LocalExecutor
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{}
}

// CreateDirectory creates a directory with the specified permissions
func (e *LocalExecutor) CreateDirectory(path string, mode os.FileMode) error {
	return os.MkdirAll(path, mode)
}

// FileExists checks if a file exists
func (e *LocalExecutor) FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// RemoveDirectory removes a directory and all its contents
func (e *LocalExecutor) RemoveDirectory(path string) error {
	return os.RemoveAll(path)
}

// Rename moves a file or directory to a new path
func (e *LocalExecutor) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// LookPath locates an executable on PATH
func (e *LocalExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Capture runs a command and returns its trimmed stdout
func (e *LocalExecutor) Capture(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("exec: %s %s", name, strings.Join(args, " "))
	err := cmd.Run()
	if err != nil {
		return "", fmt.Errorf("command %s failed: %w\nstderr: %s", name, err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Run executes a command with the given I/O wiring and returns its exit code.
// A non-zero exit is reported through the code, not the error; the error is
// reserved for failures to start the process at all.
func (e *LocalExecutor) Run(ctx context.Context, command Command) (int, error) {
	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir
	cmd.Env = command.Env
	cmd.Stdin = command.Stdin
	cmd.Stdout = command.Stdout
	cmd.Stderr = command.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	logger.Debug("exec: %s %s", command.Name, strings.Join(command.Args, " "))
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Debug("exec: %s exited with status %d", command.Name, exitErr.ExitCode())
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed to run %s: %w", command.Name, err)
	}

	return 0, nil
}

// DiskSpace returns available disk space in bytes for the given path
func (e *LocalExecutor) DiskSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("failed to get disk space: %w", err)
	}

	return stat.Bavail * uint64(stat.Bsize), nil
}
