package executor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	exec := NewLocalExecutor()

	exists, err := exec.FileExists(filepath.Join(dir, "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("expected missing file to not exist")
	}

	file := filepath.Join(dir, "yes")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	exists, err = exec.FileExists(file)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("expected file to exist")
	}
}

func TestCapture(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "greet")
	writeScript(t, script, `echo "  hello  "`)

	exec := NewLocalExecutor()
	out, err := exec.Capture(context.Background(), script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "hello" {
		t.Errorf("Capture output = %q, want %q", out, "hello")
	}
}

func TestCaptureFailureIncludesStderr(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fail")
	writeScript(t, script, `echo "boom" >&2; exit 1`)

	exec := NewLocalExecutor()
	_, err := exec.Capture(context.Background(), script)
	if err == nil {
		t.Fatal("expected error")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("boom")) {
		t.Errorf("error %q missing stderr output", err)
	}
}

func TestRunExitCode(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "status")
	writeScript(t, script, `exit 3`)

	exec := NewLocalExecutor()
	var stdout, stderr bytes.Buffer
	status, err := exec.Run(context.Background(), Command{
		Name:   script,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatal(err)
	}
	if status != 3 {
		t.Errorf("status = %d, want 3", status)
	}
}

func TestRunMissingBinary(t *testing.T) {
	exec := NewLocalExecutor()
	_, err := exec.Run(context.Background(), Command{Name: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestRunUsesDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	workDir := t.TempDir()
	script := filepath.Join(dir, "inspect")
	writeScript(t, script, `printf '%s %s' "$PWD" "$PROBE"`)

	exec := NewLocalExecutor()
	var stdout bytes.Buffer
	status, err := exec.Run(context.Background(), Command{
		Name:   script,
		Dir:    workDir,
		Env:    []string{"PATH=" + os.Getenv("PATH"), "PROBE=ok"},
		Stdout: &stdout,
		Stderr: &stdout,
	})
	if err != nil {
		t.Fatal(err)
	}
	if status != 0 {
		t.Fatalf("status = %d, output %q", status, stdout.String())
	}
	want := workDir + " ok"
	if stdout.String() != want {
		t.Errorf("output = %q, want %q", stdout.String(), want)
	}
}

func TestDiskSpace(t *testing.T) {
	exec := NewLocalExecutor()
	available, err := exec.DiskSpace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if available == 0 {
		t.Error("expected non-zero available disk space")
	}
}
