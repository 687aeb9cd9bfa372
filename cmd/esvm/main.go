// Command esvm is the reference host for the evaluation runtime: it reads
// a JSON AST document (pkg/esvm.LoadTree) and runs it, so the core
// evaluator is exercisable end-to-end without a bundled parser.
package main

import (
	"os"

	"github.com/esvm-go/esvm/cmd/esvm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
