package shell

import (
	"os"
	"path/filepath"
	"strings"
)

// Family is the interactive shell family the emitted snippet targets
type Family string

const (
	FamilyBash Family = "bash"
	FamilyZsh  Family = "zsh"
	FamilyKsh  Family = "ksh"
	FamilyFish Family = "fish"
)

// UnsetLine clears the shell-level version override. It is a plain command, so
// the same line works in every shell family.
const UnsetLine = "pyvm shell --unset;"

// DetectFamily determines the caller's shell family from PYVM_SHELL, falling
// back to the basename of $SHELL, then to bash
func DetectFamily() Family {
	name := os.Getenv("PYVM_SHELL")
	if name == "" {
		name = filepath.Base(os.Getenv("SHELL"))
	}

	switch strings.ToLower(name) {
	case "zsh":
		return FamilyZsh
	case "ksh", "mksh", "pdksh":
		return FamilyKsh
	case "fish":
		return FamilyFish
	default:
		return FamilyBash
	}
}

// GuardLine calls a deactivate function when one is defined. Only this line
// varies across shell families.
func GuardLine(family Family) string {
	if family == FamilyFish {
		return "functions -q deactivate; and deactivate;"
	}
	return `command -v deactivate >/dev/null && deactivate;`
}

// DeactivateScript returns the shell source text for the caller's interactive
// shell to evaluate. It deactivates nothing itself.
func DeactivateScript(family Family) string {
	return GuardLine(family) + "\n" + UnsetLine + "\n"
}
