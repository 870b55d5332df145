package executor

import (
	"context"
	"io"
	"os"
)

// Command describes one child-process invocation. Name is resolved against
// PATH unless it contains a path separator. A nil Env inherits the parent
// environment.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Executor abstracts process and filesystem operations so the pipeline can be
// exercised against stub tools in tests. All command execution is synchronous;
// the plugin never backgrounds work.
type Executor interface {
	// File Operations
	CreateDirectory(path string, mode os.FileMode) error
	FileExists(path string) (bool, error)
	RemoveDirectory(path string) error
	Rename(oldPath, newPath string) error

	// Command Execution
	LookPath(name string) (string, error)
	Capture(ctx context.Context, name string, args ...string) (string, error)
	Run(ctx context.Context, cmd Command) (int, error)

	// System Information
	DiskSpace(path string) (available uint64, err error)
}
