package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
)

// installTool drops an executable stub into a bin directory
func installTool(t *testing.T, binDir, name string) string {
	t.Helper()
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(binDir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		tools []string
		want  string
	}{
		{
			name:  "virtualenv wins when both present",
			tools: []string{"virtualenv", "pyvenv"},
			want:  "virtualenv",
		},
		{
			name:  "virtualenv alone",
			tools: []string{"virtualenv"},
			want:  "virtualenv",
		},
		{
			name:  "pyvenv only when virtualenv absent",
			tools: []string{"pyvenv"},
			want:  "pyvenv",
		},
		{
			name: "neither present falls back to virtualenv",
			want: "virtualenv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Empty PATH so only the prefix bin directory is probed
			t.Setenv("PATH", t.TempDir())

			prefix := t.TempDir()
			for _, tool := range tt.tools {
				installTool(t, filepath.Join(prefix, "bin"), tool)
			}

			detector := NewDetector(executor.NewLocalExecutor(), prefix)
			if got := detector.Detect().Name(); got != tt.want {
				t.Errorf("Detect() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectPrefersPrefixOverPath(t *testing.T) {
	pathDir := t.TempDir()
	installTool(t, pathDir, "virtualenv")
	t.Setenv("PATH", pathDir)

	prefix := t.TempDir()
	prefixTool := installTool(t, filepath.Join(prefix, "bin"), "virtualenv")

	detector := NewDetector(executor.NewLocalExecutor(), prefix)
	if got := detector.Locate("virtualenv"); got != prefixTool {
		t.Errorf("Locate() = %s, want prefix-local %s", got, prefixTool)
	}
}

func TestHasVirtualenv(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	prefix := t.TempDir()
	detector := NewDetector(executor.NewLocalExecutor(), prefix)
	if detector.HasVirtualenv() {
		t.Error("expected virtualenv to be absent")
	}

	installTool(t, filepath.Join(prefix, "bin"), "virtualenv")
	if !detector.HasVirtualenv() {
		t.Error("expected virtualenv to be present")
	}
}
