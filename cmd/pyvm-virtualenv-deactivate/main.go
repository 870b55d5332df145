package main

import (
	"fmt"
	"os"

	"github.com/pyvm/pyvm-virtualenv/pkg/shell"
)

// Emits shell source text for the caller's interactive shell to evaluate:
//
//	eval "$(pyvm-virtualenv-deactivate)"
//
// It does not deactivate anything itself.
func main() {
	fmt.Fprint(os.Stdout, shell.DeactivateScript(shell.DetectFamily()))
}
