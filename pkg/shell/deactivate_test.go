package shell

import (
	"strings"
	"testing"
)

func TestDeactivateScriptIncludesUnsetLineForEveryFamily(t *testing.T) {
	families := []Family{FamilyBash, FamilyZsh, FamilyKsh, FamilyFish}

	for _, family := range families {
		script := DeactivateScript(family)
		if !strings.Contains(script, UnsetLine) {
			t.Errorf("family %s: script %q missing unset line", family, script)
		}
	}
}

func TestDeactivateScriptVariesOnlyGuardLine(t *testing.T) {
	bash := DeactivateScript(FamilyBash)
	fish := DeactivateScript(FamilyFish)

	if bash == fish {
		t.Fatal("expected bash and fish scripts to differ")
	}

	bashLines := strings.Split(strings.TrimRight(bash, "\n"), "\n")
	fishLines := strings.Split(strings.TrimRight(fish, "\n"), "\n")
	if len(bashLines) != 2 || len(fishLines) != 2 {
		t.Fatalf("expected two lines per script, got %d and %d", len(bashLines), len(fishLines))
	}

	if bashLines[0] == fishLines[0] {
		t.Error("expected guard line to differ between bash and fish")
	}
	if bashLines[1] != fishLines[1] {
		t.Errorf("expected unset line to be identical: %q vs %q", bashLines[1], fishLines[1])
	}
}

func TestDetectFamily(t *testing.T) {
	tests := []struct {
		name      string
		pyvmShell string
		shell     string
		want      Family
	}{
		{name: "pyvm shell wins", pyvmShell: "fish", shell: "/bin/bash", want: FamilyFish},
		{name: "falls back to SHELL basename", shell: "/usr/bin/zsh", want: FamilyZsh},
		{name: "ksh variants", shell: "/bin/mksh", want: FamilyKsh},
		{name: "unknown defaults to bash", shell: "/bin/dash", want: FamilyBash},
		{name: "nothing set defaults to bash", want: FamilyBash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PYVM_SHELL", tt.pyvmShell)
			t.Setenv("SHELL", tt.shell)

			if got := DetectFamily(); got != tt.want {
				t.Errorf("DetectFamily() = %s, want %s", got, tt.want)
			}
		})
	}
}
